package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"postcard/internal/models"
)

// FileSink writes postcard sets under a root directory, mirroring the
// canonical object-key layout (postcards/<name>/source.jpg etc.).
type FileSink struct {
	Root string
}

// NewFileSink returns a sink rooted at dir, creating it when missing.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %v", dir, err)
	}
	return &FileSink{Root: dir}, nil
}

// Store writes the source image and every postcard. On any write failure the
// set's directory is removed again, so a partial set is never left behind.
func (s *FileSink) Store(_ context.Context, set *models.PhotoSet) error {
	setDir := filepath.Dir(filepath.Join(s.Root, set.SourceKey()))
	if err := os.MkdirAll(setDir, 0o755); err != nil {
		return fmt.Errorf("creating set directory: %v", err)
	}

	write := func(key string, data []byte) error {
		path := filepath.Join(s.Root, key)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %v", path, err)
		}
		return nil
	}

	if err := s.storeAll(write, set); err != nil {
		if rmErr := os.RemoveAll(setDir); rmErr != nil {
			log.Printf("Failed to clean up partial set %s: %v", setDir, rmErr)
		}
		return err
	}

	log.Printf("Wrote postcard set '%s' to %s (%d postcards)", set.Name, setDir, len(set.Postcards))
	return nil
}

func (s *FileSink) storeAll(write func(string, []byte) error, set *models.PhotoSet) error {
	if err := write(set.SourceKey(), set.Source); err != nil {
		return err
	}
	for _, pc := range set.Postcards {
		if err := write(set.PostcardKey(pc.Placement), pc.Bytes); err != nil {
			return err
		}
	}
	return nil
}
