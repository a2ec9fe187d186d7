package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"postcard/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS source_images (
	id    BIGSERIAL PRIMARY KEY,
	name  TEXT NOT NULL,
	key   TEXT NOT NULL UNIQUE,
	bytes BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS postcards (
	id        BIGSERIAL PRIMARY KEY,
	source_id BIGINT NOT NULL REFERENCES source_images(id) ON DELETE CASCADE,
	placement TEXT NOT NULL,
	key       TEXT NOT NULL UNIQUE,
	bytes     BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// PostgresStore persists postcard sets in two tables: one row per source
// image and one row per rendered postcard referencing it. A set is written
// in a single transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database at dsn and ensures the schema
// exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %v", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %v", err)
	}
	log.Println("Connected to postgres store")
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Store writes the whole set in one transaction. Re-storing a set with the
// same keys replaces the previous rows, so reprocessing a photo is safe.
func (s *PostgresStore) Store(ctx context.Context, set *models.PhotoSet) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	var sourceID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO source_images (name, key, bytes) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name, bytes = EXCLUDED.bytes
		 RETURNING id`,
		set.Name, set.SourceKey(), set.Source,
	).Scan(&sourceID)
	if err != nil {
		return fmt.Errorf("inserting source image: %v", err)
	}

	for _, pc := range set.Postcards {
		_, err = tx.Exec(ctx,
			`INSERT INTO postcards (source_id, placement, key, bytes) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (key) DO UPDATE SET source_id = EXCLUDED.source_id, bytes = EXCLUDED.bytes`,
			sourceID, string(pc.Placement), set.PostcardKey(pc.Placement), pc.Bytes,
		)
		if err != nil {
			return fmt.Errorf("inserting postcard %s: %v", pc.Placement, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing postcard set: %v", err)
	}
	log.Printf("Stored postcard set '%s' in postgres (%d postcards)", set.Name, len(set.Postcards))
	return nil
}
