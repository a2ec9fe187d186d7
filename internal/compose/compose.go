// Package compose renders labeled postcard images: orientation-aware
// resizing onto a fixed canvas, automatic font sizing, contrast-based text
// color, and corner label placement.
package compose

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"postcard/internal/models"
)

// Canvas dimensions by photo aspect. The postcard formats are fixed; the
// photo is scaled and cropped to fill one of them completely.
const (
	PortraitWidth   = 1200
	PortraitHeight  = 1800
	LandscapeWidth  = 1800
	LandscapeHeight = 1200
)

const (
	// baseMargin offsets the NW label anchor from the canvas edge and
	// reserves the same border when fitting the font.
	baseMargin = 10
	// shadowOffset displaces the secondary-color pass under the label.
	shadowOffset = 5
	// rightMarginRatio keeps east-anchored labels off the right edge.
	rightMarginRatio = 0.8

	jpegQuality = 90
)

// Composer turns a decoded photo plus a chosen name into rendered postcards.
type Composer struct {
	Faces FaceProvider
	Fit   FitConfig
}

// NewComposer builds a Composer with the default font-search configuration.
func NewComposer(faces FaceProvider) *Composer {
	return &Composer{Faces: faces, Fit: DefaultFit()}
}

// CanvasSize picks the output dimensions from the (orientation-corrected)
// photo dimensions: portrait photos get the portrait canvas.
func CanvasSize(width, height int) (int, int) {
	if width < height {
		return PortraitWidth, PortraitHeight
	}
	return LandscapeWidth, LandscapeHeight
}

// Compose renders one postcard per requested placement. All placements
// share a single scaled and cropped base image, encoded once. The label is
// rendered uppercase; name keeps its original casing for storage keys.
func (c *Composer) Compose(src image.Image, orientation int, name string, placements []models.Placement) (*models.PhotoSet, error) {
	oriented := correctOrientation(src, orientation)

	bounds := oriented.Bounds()
	canvasW, canvasH := CanvasSize(bounds.Dx(), bounds.Dy())
	base := coverCrop(oriented, canvasW, canvasH)

	label := strings.ToUpper(name)
	size, err := c.Fit.Fit(c.Faces, label, canvasW-2*baseMargin, canvasH-2*baseMargin)
	if err != nil {
		return nil, err
	}
	face, err := c.Faces.Face(size)
	if err != nil {
		return nil, err
	}
	textW, textH := measureFace(face, label)

	sourceBytes, err := encodeJPEG(base)
	if err != nil {
		return nil, err
	}

	set := &models.PhotoSet{Name: name, Source: sourceBytes}
	for _, placement := range placements {
		x, y := anchor(placement, canvasW, canvasH, textW, textH)

		sampleRect := image.Rect(x, y, min(x+textW, canvasW), min(y+textH, canvasH))
		primary, secondary := DecideColors(imaging.Crop(base, sampleRect))

		canvas := imaging.Clone(base)
		drawLabel(canvas, face, label, x+shadowOffset, y+shadowOffset, secondary)
		drawLabel(canvas, face, label, x, y, primary)

		encoded, err := encodeJPEG(canvas)
		if err != nil {
			return nil, err
		}
		set.Postcards = append(set.Postcards, models.RenderedPostcard{
			Name:      name,
			Placement: placement,
			Bytes:     encoded,
		})
	}
	return set, nil
}

// correctOrientation applies the EXIF rotation mapping, expanding bounds to
// fit. Unknown or absent codes leave the image as is.
func correctOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 3:
		return imaging.Rotate180(img)
	case 6:
		return imaging.Rotate270(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}

// coverCrop uniformly scales img to just cover the target box, then crops
// the top-left region. The canvas is always fully filled, never
// letterboxed, at the cost of possibly cropping content.
func coverCrop(img image.Image, width, height int) *image.NRGBA {
	bounds := img.Bounds()
	srcW, srcH := float64(bounds.Dx()), float64(bounds.Dy())

	scale := float64(width) / srcW
	if s := float64(height) / srcH; s > scale {
		scale = s
	}
	scaledW := int(srcW*scale + 0.5)
	scaledH := int(srcH*scale + 0.5)

	resized := imaging.Resize(img, scaledW, scaledH, imaging.Lanczos)
	return imaging.Crop(resized, image.Rect(0, 0, width, height))
}

// anchor resolves a placement to the label's top-left origin. East anchors
// back off from the usable right margin, south anchors from the bottom edge.
func anchor(p models.Placement, canvasW, canvasH, textW, textH int) (int, int) {
	x, y := baseMargin, baseMargin
	switch p {
	case models.PlacementNE:
		x = int(rightMarginRatio*float64(canvasW)) - textW
	case models.PlacementSW:
		y = canvasH - textH
	case models.PlacementSE:
		x = int(rightMarginRatio*float64(canvasW)) - textW
		y = canvasH - textH
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

func drawLabel(dst *image.NRGBA, face font.Face, text string, x, y int, c color.Color) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(text)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
