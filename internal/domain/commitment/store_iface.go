package commitment

import "context"

// Store keeps the local commitment log and the per-employee draft map.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, userKey string) ([]Entry, error)
	Delete(ctx context.Context, userKey, entryID string) error

	SaveDrafts(ctx context.Context, userKey string, drafts map[string]int) error
	LoadDrafts(ctx context.Context, userKey string) (map[string]int, error)
	DeleteDrafts(ctx context.Context, userKey string) error
}
