package compose

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// ErrFontResource means the font asset could not be loaded. Unlike the
// per-photo errors, this one aborts the whole run: every photo would fail
// the same way.
var ErrFontResource = errors.New("compose: font resource unavailable")

// Measurer reports the rendered bounding box of text at a point size.
type Measurer interface {
	Measure(text string, size int) (width, height int, err error)
}

// FaceProvider yields drawable font faces in addition to measurements.
type FaceProvider interface {
	Measurer
	Face(size int) (font.Face, error)
}

// OpenTypeProvider parses a TTF/OTF file once and builds faces per size.
type OpenTypeProvider struct {
	fnt *opentype.Font
}

// LoadFont reads and parses the font file at path.
func LoadFont(path string) (*OpenTypeProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrFontResource, path, err)
	}
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrFontResource, path, err)
	}
	return &OpenTypeProvider{fnt: fnt}, nil
}

// Face builds a face at the given point size.
func (p *OpenTypeProvider) Face(size int) (font.Face, error) {
	face, err := opentype.NewFace(p.fnt, &opentype.FaceOptions{
		Size: float64(size),
		DPI:  72,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: face at %dpt: %v", ErrFontResource, size, err)
	}
	return face, nil
}

// Measure reports the bounding box of text rendered at size.
func (p *OpenTypeProvider) Measure(text string, size int) (int, int, error) {
	face, err := p.Face(size)
	if err != nil {
		return 0, 0, err
	}
	w, h := measureFace(face, text)
	return w, h, nil
}

func measureFace(face font.Face, text string) (int, int) {
	width := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()
	return width, height
}
