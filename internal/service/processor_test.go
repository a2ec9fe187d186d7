package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"postcard/internal/compose"
	"postcard/internal/exif"
	"postcard/internal/geocode"
	"postcard/internal/models"
	"postcard/internal/naming"
	"postcard/internal/pipeline"
	"postcard/pkg/geo"
)

type stubGeocoder struct {
	locations []geocode.LocationCandidate
	err       error
	calls     int
}

func (g *stubGeocoder) Lookup(_ context.Context, _ models.Coordinate, _, _ int) ([]geocode.LocationCandidate, error) {
	g.calls++
	return g.locations, g.err
}

type recordingRenderer struct {
	name       string
	placements []models.Placement
}

func (r *recordingRenderer) Compose(_ image.Image, _ int, name string, placements []models.Placement) (*models.PhotoSet, error) {
	r.name = name
	r.placements = placements
	return &models.PhotoSet{Name: name, Source: []byte("jpeg")}, nil
}

type recordingSink struct {
	stored []*models.PhotoSet
	err    error
}

func (s *recordingSink) Store(_ context.Context, set *models.PhotoSet) error {
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, set)
	return nil
}

// stubDecoded replaces the decode step so the flow can be driven without a
// GPS-tagged fixture on disk.
func stubDecoded(coord models.Coordinate) pipeline.Step[photoJob] {
	return func(_ context.Context, job *photoJob) error {
		job.img = image.NewNRGBA(image.Rect(0, 0, 10, 10))
		job.coord = coord
		return nil
	}
}

func newTestProcessor(g Geocoder, r Renderer, sinks ...Sink) *Processor {
	p := NewProcessor(g, naming.NewAggregator(geo.Resolver{}), r, []models.Placement{models.PlacementNW}, sinks...)
	p.pipe = pipeline.New(
		stubDecoded(models.Coordinate{Lat: 51.5007, Lng: -0.1246}),
		p.locate,
		p.chooseName,
		p.compose,
		p.persist,
	)
	return p
}

func TestProcessEndToEnd(t *testing.T) {
	geocoder := &stubGeocoder{locations: []geocode.LocationCandidate{
		{Name: "Big Ben", Street: "Bridge Street", AdminArea5: "London", AdminArea1: "GB"},
		{AdminArea5: "London", AdminArea1: "GB"},
	}}
	renderer := &recordingRenderer{}
	sink := &recordingSink{}

	p := newTestProcessor(geocoder, renderer, sink)

	set, err := p.Process(context.Background(), "westminster.jpg", []byte("unused"))
	require.NoError(t, err)

	assert.Equal(t, "Big Ben", set.Name)
	assert.Equal(t, "Big Ben", renderer.name)
	assert.Equal(t, []models.Placement{models.PlacementNW}, renderer.placements)
	require.Len(t, sink.stored, 1)
	assert.Equal(t, 1, geocoder.calls)
}

func TestProcessMissingGPS(t *testing.T) {
	// A JPEG without EXIF has no coordinate to extract; the flow must stop
	// before any geocoding happens.
	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{120, 120, 120, 255})
		}
	}
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	geocoder := &stubGeocoder{}
	sink := &recordingSink{}
	p := NewProcessor(geocoder, naming.NewAggregator(geo.Resolver{}), &recordingRenderer{}, models.AllPlacements, sink)

	_, err := p.Process(context.Background(), "plain.jpg", buf.Bytes())
	require.Error(t, err)
	assert.ErrorIs(t, err, exif.ErrMissingGPS)
	assert.Zero(t, geocoder.calls)
	assert.Empty(t, sink.stored)
}

func TestProcessGeocodeFailureStopsFlow(t *testing.T) {
	geocoder := &stubGeocoder{err: geocode.ErrUnavailable}
	sink := &recordingSink{}
	p := newTestProcessor(geocoder, &recordingRenderer{}, sink)

	_, err := p.Process(context.Background(), "photo.jpg", nil)
	assert.ErrorIs(t, err, geocode.ErrUnavailable)
	assert.Empty(t, sink.stored)
}

func TestProcessNoUsableName(t *testing.T) {
	geocoder := &stubGeocoder{locations: []geocode.LocationCandidate{
		{Street: "221B Baker Street"},
	}}
	p := newTestProcessor(geocoder, &recordingRenderer{})

	_, err := p.Process(context.Background(), "photo.jpg", nil)
	assert.ErrorIs(t, err, naming.ErrNoNameFound)
}

type bitmapFaces struct{}

func (bitmapFaces) Face(size int) (font.Face, error) { return basicfont.Face7x13, nil }

func (bitmapFaces) Measure(text string, size int) (int, int, error) {
	w := font.MeasureString(basicfont.Face7x13, text).Ceil()
	m := basicfont.Face7x13.Metrics()
	return w, (m.Ascent + m.Descent).Ceil(), nil
}

func TestProcessRendersLandscapePostcard(t *testing.T) {
	geocoder := &stubGeocoder{locations: []geocode.LocationCandidate{{Name: "Big Ben"}}}
	sink := &recordingSink{}

	p := NewProcessor(
		geocoder,
		naming.NewAggregator(geo.Resolver{}),
		compose.NewComposer(bitmapFaces{}),
		[]models.Placement{models.PlacementNW},
		sink,
	)
	p.pipe = pipeline.New(
		func(_ context.Context, job *photoJob) error {
			job.img = image.NewNRGBA(image.Rect(0, 0, 3000, 2000))
			job.coord = models.Coordinate{Lat: 51.5074, Lng: -0.1278}
			return nil
		},
		p.locate,
		p.chooseName,
		p.compose,
		p.persist,
	)

	set, err := p.Process(context.Background(), "thames.jpg", nil)
	require.NoError(t, err)

	assert.Equal(t, "Big Ben", set.Name)
	require.Len(t, set.Postcards, 1)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(set.Postcards[0].Bytes))
	require.NoError(t, err)
	assert.Equal(t, 1800, cfg.Width)
	assert.Equal(t, 1200, cfg.Height)

	require.Len(t, sink.stored, 1)
}

func TestProcessSinkFailureSurfaces(t *testing.T) {
	geocoder := &stubGeocoder{locations: []geocode.LocationCandidate{{Name: "Big Ben"}}}
	broken := &recordingSink{err: errors.New("disk full")}
	p := newTestProcessor(geocoder, &recordingRenderer{}, broken)

	_, err := p.Process(context.Background(), "photo.jpg", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
