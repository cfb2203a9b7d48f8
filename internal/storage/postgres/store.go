package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides Postgres persistence for settings blobs.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates the settings table when it does not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS screener_settings (
			name text PRIMARY KEY,
			data bytea NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create settings table: %w", err)
	}
	return nil
}

// Load returns the stored blob for a key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, fmt.Errorf("settings key required")
	}
	var data []byte
	row := s.pool.QueryRow(ctx, `SELECT data FROM screener_settings WHERE name=$1`, key)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Save upserts the blob for a key.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("settings key required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO screener_settings (name, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET data = EXCLUDED.data, updated_at = now()
	`, key, data)
	return err
}
