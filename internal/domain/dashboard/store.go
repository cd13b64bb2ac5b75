package dashboard

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists the aggregated dashboard rows per designation, the durable
// cache the SPA used to keep in per-browser storage.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) SaveCache(ctx context.Context, designation string, payload []byte) error {
	query := `
		INSERT INTO dashboard_cache (designation, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (designation) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = now()`

	_, err := s.DB.Exec(ctx, query, designation, payload)
	return err
}

func (s *Store) LoadCache(ctx context.Context, designation string) ([]byte, error) {
	query := `SELECT payload FROM dashboard_cache WHERE designation = $1`

	var payload []byte
	err := s.DB.QueryRow(ctx, query, designation).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *Store) ClearCache(ctx context.Context, designation string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM dashboard_cache WHERE designation = $1`, designation)
	return err
}
