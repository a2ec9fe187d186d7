package models

import (
	"fmt"
	"strings"
)

// Coordinate is a signed decimal latitude/longitude pair, the result of
// decoding a GPS rational triple from photo metadata.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%f,%f", c.Lat, c.Lng)
}

// Placement names one of the four canvas corners a label can be anchored to.
type Placement string

const (
	PlacementNW Placement = "NW"
	PlacementNE Placement = "NE"
	PlacementSW Placement = "SW"
	PlacementSE Placement = "SE"
)

// AllPlacements lists every corner, in the order postcards are rendered.
var AllPlacements = []Placement{PlacementNW, PlacementNE, PlacementSW, PlacementSE}

// ParsePlacements resolves a CLI placement selector into concrete corners.
// "*" means all four.
func ParsePlacements(s string) ([]Placement, error) {
	if s == "*" {
		return AllPlacements, nil
	}
	p := Placement(strings.ToUpper(s))
	for _, known := range AllPlacements {
		if p == known {
			return []Placement{p}, nil
		}
	}
	return nil, fmt.Errorf("unknown placement %q (want NW, NE, SW, SE or *)", s)
}

// RenderedPostcard is a final labeled image for one placement. Several
// postcards from the same photo share one resized source image, which is
// stored once and referenced by key.
type RenderedPostcard struct {
	Name      string
	Placement Placement
	Bytes     []byte
}

// PhotoSet bundles everything produced from a single photo: the shared
// scaled/cropped source image plus one postcard per requested placement.
// A sink must persist a set atomically; partial sets are never visible.
type PhotoSet struct {
	Name      string
	Source    []byte
	Postcards []RenderedPostcard
}

// SourceKey is the canonical object key for the shared source image.
func (p PhotoSet) SourceKey() string {
	return fmt.Sprintf("postcards/%s/source.jpg", sanitizeKey(p.Name))
}

// PostcardKey is the canonical object key for one rendered placement.
func (p PhotoSet) PostcardKey(placement Placement) string {
	return fmt.Sprintf("postcards/%s/%s.jpg", sanitizeKey(p.Name), strings.ToLower(string(placement)))
}

// sanitizeKey replaces spaces with hyphens and lowercases the string.
func sanitizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", "-"))
}
