package session

import "context"

// Store persists session records and designation selections.
type Store interface {
	SaveUser(ctx context.Context, userKey string, record []byte) error
	LoadUser(ctx context.Context, userKey string) ([]byte, error)
	DeleteUser(ctx context.Context, userKey string) error

	SaveSelection(ctx context.Context, userKey, designation, department string) error
	LoadSelection(ctx context.Context, userKey string) (string, error)
	DeleteSelection(ctx context.Context, userKey string) error
}
