// Package exif reads the photo metadata the postcard pipeline needs: the GPS
// block as raw degree/minute/second rationals, and the orientation code.
// Decoding the rationals into a signed decimal coordinate lives here too,
// since the two are never used apart.
package exif

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

var (
	// ErrMissingGPS means the metadata has no GPS block at all. The photo
	// cannot be geocoded and must be skipped.
	ErrMissingGPS = errors.New("exif: no GPS data in metadata")

	// ErrMalformedRational means a degree/minute/second value has a zero
	// denominator or could not be read as a rational.
	ErrMalformedRational = errors.New("exif: malformed GPS rational")
)

// Rational is one numerator/denominator pair of a DMS triple.
type Rational struct {
	Num int64
	Den int64
}

// GpsRecord holds the raw GPS fields as they appear in metadata: three
// rationals per axis (degrees, minutes, seconds) plus single-character
// hemisphere references.
type GpsRecord struct {
	Latitude     [3]Rational
	Longitude    [3]Rational
	LatitudeRef  string // "N" or "S"
	LongitudeRef string // "E" or "W"
}

// Metadata is the subset of photo metadata the pipeline consumes.
type Metadata struct {
	GPS         *GpsRecord // nil when the photo carries no GPS block
	Orientation int        // 0 when absent
}

// ReadFile opens path and extracts Metadata from its embedded EXIF.
func ReadFile(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read extracts Metadata from an image stream. A photo without any EXIF at
// all yields Metadata with a nil GPS record rather than an error; the
// caller decides whether that is fatal.
func Read(r io.Reader) (*Metadata, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return &Metadata{}, nil
	}

	meta := &Metadata{}
	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil && v >= 1 && v <= 8 {
			meta.Orientation = v
		}
	}

	gps, err := readGPS(x)
	if err != nil {
		return nil, err
	}
	meta.GPS = gps
	return meta, nil
}

// readGPS pulls the raw rational triples out of the GPS IFD. A missing
// block returns (nil, nil); a present but unreadable block is malformed.
func readGPS(x *exif.Exif) (*GpsRecord, error) {
	latTag, err := x.Get(exif.GPSLatitude)
	if err != nil {
		return nil, nil
	}
	lngTag, err := x.Get(exif.GPSLongitude)
	if err != nil {
		return nil, nil
	}

	rec := &GpsRecord{}
	if rec.Latitude, err = rationalTriple(latTag); err != nil {
		return nil, err
	}
	if rec.Longitude, err = rationalTriple(lngTag); err != nil {
		return nil, err
	}

	if tag, err := x.Get(exif.GPSLatitudeRef); err == nil {
		rec.LatitudeRef, _ = tag.StringVal()
	}
	if tag, err := x.Get(exif.GPSLongitudeRef); err == nil {
		rec.LongitudeRef, _ = tag.StringVal()
	}
	return rec, nil
}

func rationalTriple(tag *tiff.Tag) ([3]Rational, error) {
	var out [3]Rational
	for i := 0; i < 3; i++ {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrMalformedRational, err)
		}
		out[i] = Rational{Num: num, Den: den}
	}
	return out, nil
}
