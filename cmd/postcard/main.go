package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"postcard/internal/compose"
	"postcard/internal/env"
	"postcard/internal/geocode"
	"postcard/internal/models"
	"postcard/internal/naming"
	"postcard/internal/service"
	"postcard/internal/storage"
	"postcard/pkg/geo"
	"postcard/pkg/graceful"
)

func main() {
	in := pflag.String("in", "", "photo file or directory to process")
	placement := pflag.String("placement", "NW", `label corner: NW, NE, SW, SE or "*" for all four`)
	out := pflag.String("out", "out", "output directory for postcard sets")
	pgDSN := pflag.String("pg", "", "optional postgres DSN to also store postcards in")
	fontPath := pflag.String("font", "DejaVuSans.ttf", "TrueType font used for the label")
	radius := pflag.Int("radius", service.DefaultRadius, "nearby-search radius in walking minutes")
	retries := pflag.Int("retries", 0, "extra attempts per geocoding call")
	pflag.Parse()

	if *in == "" {
		pflag.Usage()
		log.Fatal("--in is required")
	}

	env.LoadEnv()
	apiKey := env.MustGetEnv("MAPQUEST_KEY")

	placements, err := models.ParsePlacements(*placement)
	if err != nil {
		log.Fatal(err)
	}

	// A missing font fails every photo the same way, so it aborts the run
	// before any work starts.
	faces, err := compose.LoadFont(*fontPath)
	if err != nil {
		log.Fatalf("Loading font: %v", err)
	}

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	fileSink, err := storage.NewFileSink(*out)
	if err != nil {
		log.Fatal(err)
	}
	sinks := []service.Sink{fileSink}

	if *pgDSN != "" {
		pg, err := storage.NewPostgresStore(ctx, *pgDSN)
		if err != nil {
			log.Fatalf("Connecting to postgres: %v", err)
		}
		defer pg.Close()
		sinks = append(sinks, pg)
	}

	geocoder := geocode.NewClient(apiKey)
	geocoder.Retries = *retries

	processor := service.NewProcessor(
		geocoder,
		naming.NewAggregator(geo.Resolver{}),
		compose.NewComposer(faces),
		placements,
		sinks...,
	)
	processor.Radius = *radius

	photos, err := collectPhotos(*in)
	if err != nil {
		log.Fatal(err)
	}
	if len(photos) == 0 {
		log.Fatalf("No photos found in %s", *in)
	}

	processed, failed := 0, 0
	for _, path := range photos {
		if ctx.Err() != nil {
			log.Println("Shutdown requested, stopping batch.")
			break
		}
		if _, err := processor.ProcessFile(ctx, path); err != nil {
			log.Printf("Skipping %s: %v", filepath.Base(path), err)
			failed++
			continue
		}
		processed++
	}
	log.Printf("Done: %d postcard sets written, %d photos skipped.", processed, failed)
}

// collectPhotos resolves the --in argument to a list of photo paths. A
// directory is scanned non-recursively in enumeration order.
func collectPhotos(in string) ([]string, error) {
	info, err := os.Stat(in)
	if err != nil {
		return nil, fmt.Errorf("reading input %s: %w", in, err)
	}
	if !info.IsDir() {
		return []string{in}, nil
	}

	entries, err := os.ReadDir(in)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", in, err)
	}

	var photos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg":
			photos = append(photos, filepath.Join(in, entry.Name()))
		}
	}
	return photos, nil
}
