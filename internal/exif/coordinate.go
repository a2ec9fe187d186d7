package exif

import (
	"fmt"

	"postcard/internal/models"
)

// Coordinate decodes the raw DMS rationals into a signed decimal pair.
// Latitude is negated unless the reference is "N", longitude unless "E",
// so the sign always matches the hemisphere. Full float precision is
// carried forward; nothing is rounded.
func (m *Metadata) Coordinate() (models.Coordinate, error) {
	if m.GPS == nil {
		return models.Coordinate{}, ErrMissingGPS
	}

	lat, err := decimalDegrees(m.GPS.Latitude)
	if err != nil {
		return models.Coordinate{}, err
	}
	lng, err := decimalDegrees(m.GPS.Longitude)
	if err != nil {
		return models.Coordinate{}, err
	}

	if m.GPS.LatitudeRef != "N" {
		lat = -lat
	}
	if m.GPS.LongitudeRef != "E" {
		lng = -lng
	}
	return models.Coordinate{Lat: lat, Lng: lng}, nil
}

// decimalDegrees folds a degrees/minutes/seconds triple into decimal form.
func decimalDegrees(dms [3]Rational) (float64, error) {
	divisors := [3]float64{1, 60, 3600}
	var total float64
	for i, r := range dms {
		if r.Den == 0 {
			return 0, fmt.Errorf("%w: zero denominator in component %d", ErrMalformedRational, i)
		}
		total += float64(r.Num) / float64(r.Den) / divisors[i]
	}
	return total, nil
}
