// Package service contains the application services: a Processor that runs
// the full per-photo flow, and an Iterator that consumes storage events from
// a message source (e.g., Kafka via pkg/kafkaclient) and loads the
// referenced photos from S3/MinIO using a pluggable LoaderFunc.
package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"

	"postcard/internal/exif"
	"postcard/internal/geocode"
	"postcard/internal/models"
	"postcard/internal/pipeline"
)

// Radius-search defaults, in walking minutes and result rows.
const (
	DefaultRadius     = 3
	DefaultMaxMatches = 5
)

// Geocoder looks up location candidates around a coordinate.
type Geocoder interface {
	Lookup(ctx context.Context, coord models.Coordinate, radius, maxMatches int) ([]geocode.LocationCandidate, error)
}

// Namer reduces geocoder candidates to the single display name.
type Namer interface {
	Name(locations []geocode.LocationCandidate) (string, error)
}

// Renderer produces the postcard set for a decoded photo.
type Renderer interface {
	Compose(src image.Image, orientation int, name string, placements []models.Placement) (*models.PhotoSet, error)
}

// Sink persists a finished postcard set.
type Sink interface {
	Store(ctx context.Context, set *models.PhotoSet) error
}

// photoJob carries one photo through the pipeline, accumulating results.
type photoJob struct {
	source string
	data   []byte

	img         image.Image
	orientation int
	coord       models.Coordinate
	locations   []geocode.LocationCandidate
	name        string

	set *models.PhotoSet
}

// Processor runs the per-photo flow: decode and read metadata, extract the
// coordinate, geocode, choose a name, compose postcards, persist to every
// sink. Photos are independent; a failure is reported per photo.
type Processor struct {
	Geocoder   Geocoder
	Namer      Namer
	Renderer   Renderer
	Sinks      []Sink
	Placements []models.Placement
	Radius     int
	MaxMatches int

	pipe *pipeline.Pipeline[photoJob]
}

// NewProcessor wires the stages into a sequential pipeline with the default
// radius-search parameters.
func NewProcessor(g Geocoder, n Namer, r Renderer, placements []models.Placement, sinks ...Sink) *Processor {
	p := &Processor{
		Geocoder:   g,
		Namer:      n,
		Renderer:   r,
		Sinks:      sinks,
		Placements: placements,
		Radius:     DefaultRadius,
		MaxMatches: DefaultMaxMatches,
	}
	p.pipe = pipeline.New(
		p.decode,
		p.locate,
		p.chooseName,
		p.compose,
		p.persist,
	)
	return p
}

// ProcessFile runs the flow for a photo on disk. The path only identifies
// the photo in errors; the postcard name comes from geocoding.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*models.PhotoSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return p.Process(ctx, filepath.Base(path), data)
}

// Process runs the flow for raw photo bytes. source labels the photo in
// error messages (a filename or object key).
func (p *Processor) Process(ctx context.Context, source string, data []byte) (*models.PhotoSet, error) {
	job := &photoJob{source: source, data: data}
	if err := p.pipe.Run(ctx, job); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return job.set, nil
}

func (p *Processor) decode(_ context.Context, job *photoJob) error {
	meta, err := exif.Read(bytes.NewReader(job.data))
	if err != nil {
		return err
	}
	job.orientation = meta.Orientation

	coord, err := meta.Coordinate()
	if err != nil {
		return err
	}
	job.coord = coord

	img, _, err := image.Decode(bytes.NewReader(job.data))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}
	job.img = img
	return nil
}

func (p *Processor) locate(ctx context.Context, job *photoJob) error {
	locations, err := p.Geocoder.Lookup(ctx, job.coord, p.Radius, p.MaxMatches)
	if err != nil {
		return err
	}
	job.locations = locations
	return nil
}

func (p *Processor) chooseName(_ context.Context, job *photoJob) error {
	name, err := p.Namer.Name(job.locations)
	if err != nil {
		return err
	}
	job.name = name
	return nil
}

func (p *Processor) compose(_ context.Context, job *photoJob) error {
	set, err := p.Renderer.Compose(job.img, job.orientation, job.name, p.Placements)
	if err != nil {
		return err
	}
	job.set = set
	return nil
}

func (p *Processor) persist(ctx context.Context, job *photoJob) error {
	for _, sink := range p.Sinks {
		if err := sink.Store(ctx, job.set); err != nil {
			return err
		}
	}
	return nil
}
