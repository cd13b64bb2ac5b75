package commitment

import (
	"context"
	"encoding/json"
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

func (s *PGStore) Append(ctx context.Context, entry Entry) error {
	item, err := json.Marshal(entry.Item)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO commitment_history (id, user_key, item, week_start, week_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = s.DB.Exec(ctx, query,
		entry.ID, entry.UserKey, item, entry.WeekStart, entry.WeekEnd, entry.CreatedAt)
	return err
}

func (s *PGStore) List(ctx context.Context, userKey string) ([]Entry, error) {
	query := `
		SELECT id, user_key, item, week_start, week_end, created_at
		FROM commitment_history
		WHERE user_key = $1
		ORDER BY created_at DESC`

	rows, err := s.DB.Query(ctx, query, userKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var item []byte
		if err := rows.Scan(&e.ID, &e.UserKey, &item, &e.WeekStart, &e.WeekEnd, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(item, &e.Item); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PGStore) Delete(ctx context.Context, userKey, entryID string) error {
	query := `DELETE FROM commitment_history WHERE user_key = $1 AND id = $2`
	_, err := s.DB.Exec(ctx, query, userKey, entryID)
	return err
}

func (s *PGStore) SaveDrafts(ctx context.Context, userKey string, drafts map[string]int) error {
	payload, err := json.Marshal(drafts)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO commitment_drafts (user_key, drafts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_key) DO UPDATE
		SET drafts = EXCLUDED.drafts, updated_at = now()`

	_, err = s.DB.Exec(ctx, query, userKey, payload)
	return err
}

func (s *PGStore) LoadDrafts(ctx context.Context, userKey string) (map[string]int, error) {
	query := `SELECT drafts FROM commitment_drafts WHERE user_key = $1`

	var payload []byte
	err := s.DB.QueryRow(ctx, query, userKey).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	drafts := make(map[string]int)
	if err := json.Unmarshal(payload, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

func (s *PGStore) DeleteDrafts(ctx context.Context, userKey string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM commitment_drafts WHERE user_key = $1`, userKey)
	return err
}
