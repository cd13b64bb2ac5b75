package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Submitter dispatches a change notification to the spreadsheet script.
// Satisfied by *sheets.Writer.
type Submitter interface {
	Enqueue(fields map[string]string)
}

// CacheInvalidator removes a cached dashboard snapshot for a
// designation. Satisfied by *dashboard.Store.
type CacheInvalidator interface {
	ClearCache(ctx context.Context, designation string) error
}

// Selector resolves the active designation for a user. The stored
// selection wins only while the user still holds it; otherwise the
// first assigned designation becomes active. A remote submit is issued
// at most once per process lifetime for a given user and designation.
type Selector struct {
	Store  Store
	Writer Submitter
	Cache  CacheInvalidator

	SpreadsheetID string
	SheetName     string
	Header        string

	mu            sync.Mutex
	lastSubmitted map[string]string
	now           func() time.Time
}

func NewSelector(store Store, writer Submitter, cache CacheInvalidator, spreadsheetID, sheetName, header string) *Selector {
	return &Selector{
		Store:         store,
		Writer:        writer,
		Cache:         cache,
		SpreadsheetID: spreadsheetID,
		SheetName:     sheetName,
		Header:        header,
		lastSubmitted: make(map[string]string),
		now:           time.Now,
	}
}

// SelectActive picks the active designation for the user, persists it,
// and notifies the spreadsheet script when it changed since the last
// notification. User.Designation is updated in place.
func (s *Selector) SelectActive(ctx context.Context, user *User) (string, error) {
	if len(user.Designations) == 0 {
		user.Designation = ""
		return "", nil
	}

	stored, err := s.Store.LoadSelection(ctx, user.Key())
	if err != nil {
		slog.Warn("loading stored designation failed", "user", user.Key(), "error", err)
		stored = ""
	}

	chosen := user.Designations[0]
	if stored != "" && user.HasDesignation(stored) {
		chosen = stored
	} else if stored != "" {
		// The stored value is stale. Its cached dashboard must not
		// survive the switch.
		if s.Cache != nil {
			if err := s.Cache.ClearCache(ctx, stored); err != nil {
				slog.Warn("clearing stale dashboard cache failed", "designation", stored, "error", err)
			}
		}
	}

	return chosen, s.apply(ctx, user, chosen)
}

// Change switches the active designation explicitly. The target must be
// one of the user's assigned designations.
func (s *Selector) Change(ctx context.Context, user *User, designation string) error {
	if !user.HasDesignation(designation) {
		return &ValidationError{Field: "designation"}
	}
	return s.apply(ctx, user, designation)
}

func (s *Selector) apply(ctx context.Context, user *User, designation string) error {
	user.Designation = designation

	if err := s.Store.SaveSelection(ctx, user.Key(), designation, user.Department); err != nil {
		slog.Warn("persisting designation selection failed", "user", user.Key(), "error", err)
	}

	s.mu.Lock()
	already := s.lastSubmitted[user.Key()] == designation
	if !already {
		s.lastSubmitted[user.Key()] = designation
	}
	s.mu.Unlock()

	if already || s.Writer == nil {
		return nil
	}

	s.Writer.Enqueue(map[string]string{
		"action":      "updateDesignation",
		"sheetId":     s.SpreadsheetID,
		"sheetName":   s.SheetName,
		"header":      s.Header,
		"column":      "A",
		"designation": designation,
		"userName":    user.Name,
		"userEmail":   user.Email,
		"userId":      user.Key(),
		"timestamp":   s.now().Format(time.RFC3339),
	})
	return nil
}
