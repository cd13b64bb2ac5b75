package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) SaveUser(ctx context.Context, userKey string, record []byte) error {
	query := `
		INSERT INTO user_records (user_key, record, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_key) DO UPDATE
		SET record = EXCLUDED.record, updated_at = now()`

	_, err := s.DB.Exec(ctx, query, userKey, record)
	return err
}

func (s *PGStore) LoadUser(ctx context.Context, userKey string) ([]byte, error) {
	query := `SELECT record FROM user_records WHERE user_key = $1`

	var record []byte
	err := s.DB.QueryRow(ctx, query, userKey).Scan(&record)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *PGStore) DeleteUser(ctx context.Context, userKey string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM user_records WHERE user_key = $1`, userKey)
	return err
}

func (s *PGStore) SaveSelection(ctx context.Context, userKey, designation, department string) error {
	query := `
		INSERT INTO designation_selections (user_key, designation, department, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_key) DO UPDATE
		SET designation = EXCLUDED.designation, department = EXCLUDED.department, updated_at = now()`

	_, err := s.DB.Exec(ctx, query, userKey, designation, department)
	return err
}

func (s *PGStore) LoadSelection(ctx context.Context, userKey string) (string, error) {
	query := `SELECT designation FROM designation_selections WHERE user_key = $1`

	var designation string
	err := s.DB.QueryRow(ctx, query, userKey).Scan(&designation)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return designation, nil
}

func (s *PGStore) DeleteSelection(ctx context.Context, userKey string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM designation_selections WHERE user_key = $1`, userKey)
	return err
}
