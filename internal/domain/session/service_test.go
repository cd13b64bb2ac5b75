package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"mis/internal/sheets"
)

type memStore struct {
	mu         sync.Mutex
	users      map[string][]byte
	selections map[string]string
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string][]byte), selections: make(map[string]string)}
}

func (m *memStore) SaveUser(_ context.Context, key string, record []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[key] = record
	return nil
}

func (m *memStore) LoadUser(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[key], nil
}

func (m *memStore) DeleteUser(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, key)
	return nil
}

func (m *memStore) SaveSelection(_ context.Context, key, designation, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selections[key] = designation
	return nil
}

func (m *memStore) LoadSelection(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selections[key], nil
}

func (m *memStore) DeleteSelection(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.selections, key)
	return nil
}

type recordingSubmitter struct {
	mu    sync.Mutex
	calls []map[string]string
}

func (r *recordingSubmitter) Enqueue(fields map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fields)
}

func (r *recordingSubmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type recordingCache struct {
	mu      sync.Mutex
	cleared []string
}

func (r *recordingCache) ClearCache(_ context.Context, designation string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared = append(r.cleared, designation)
	return nil
}

func sheetCell(v string) string {
	if v == "" {
		return "null"
	}
	return fmt.Sprintf("{\"v\":%q}", v)
}

func masterRow(name, dept, password, role, designations string) string {
	cells := []string{sheetCell(name), "null", sheetCell(dept), sheetCell(password), sheetCell(role), sheetCell(designations)}
	return "{\"c\":[" + strings.Join(cells, ",") + "]}"
}

func recordRow(name, target, actual, image string) string {
	cells := make([]string, 15)
	for i := range cells {
		cells[i] = "null"
	}
	cells[2] = sheetCell(name)
	cells[3] = sheetCell(target)
	cells[4] = sheetCell(actual)
	cells[13] = sheetCell(image)
	return "{\"c\":[" + strings.Join(cells, ",") + "]}"
}

// sheetServer serves gviz payloads keyed by the sheet query parameter.
func sheetServer(t *testing.T, bySheet map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rows, ok := bySheet[r.URL.Query().Get("sheet")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, "/*O_o*/\ngoogle.visualization.Query.setResponse({\"table\":{\"rows\":[%s]}});", rows)
	}))
}

func newTestService(t *testing.T, srv *httptest.Server, store Store, writer Submitter, cache CacheInvalidator) *Service {
	t.Helper()
	client := sheets.NewClient(nil)
	client.BaseURL = srv.URL
	selector := NewSelector(store, writer, cache, "kpi-id", "Dashboard", "Designation")
	return NewService(client, store, selector, "auth-id", "Master", "kpi-id", "For Records")
}

func defaultSheets() map[string]string {
	return map[string]string{
		"Master":      masterRow("alice", "Sales", "pw123", "Admin", "Sales Rep, Sales Lead"),
		"For Records": recordRow("alice", "100", "80", "https://drive.google.com/file/d/ABC123/view"),
	}
}

func TestLoginResolvesFirstDesignation(t *testing.T) {
	srv := sheetServer(t, defaultSheets())
	defer srv.Close()

	store := newMemStore()
	writer := &recordingSubmitter{}
	svc := newTestService(t, srv, store, writer, &recordingCache{})

	user, err := svc.Login(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Designation != "Sales Rep" {
		t.Fatalf("expected first designation active, got %q", user.Designation)
	}
	if user.Role != "admin" {
		t.Fatalf("expected role normalized to admin, got %q", user.Role)
	}
	if user.Performance == nil || user.Performance.Target != "100" {
		t.Fatalf("expected performance snapshot, got %+v", user.Performance)
	}
	if !strings.Contains(user.Image, "ABC123") {
		t.Fatalf("expected resolved drive image, got %q", user.Image)
	}
	if writer.count() != 1 {
		t.Fatalf("expected one designation submit, got %d", writer.count())
	}
	if record, _ := store.LoadUser(context.Background(), "alice"); record == nil {
		t.Fatalf("expected persisted session record")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := sheetServer(t, defaultSheets())
	defer srv.Close()

	svc := newTestService(t, srv, newMemStore(), &recordingSubmitter{}, &recordingCache{})

	if _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	var vErr *ValidationError
	if _, err := svc.Login(context.Background(), "", "pw"); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for empty username, got %v", err)
	}
}

func TestStaleStoredDesignationFallsBack(t *testing.T) {
	srv := sheetServer(t, defaultSheets())
	defer srv.Close()

	store := newMemStore()
	store.selections["alice"] = "Ops"
	writer := &recordingSubmitter{}
	cache := &recordingCache{}
	svc := newTestService(t, srv, store, writer, cache)

	user, err := svc.Login(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Designation != "Sales Rep" {
		t.Fatalf("stale selection should fall back to first designation, got %q", user.Designation)
	}
	if len(cache.cleared) != 1 || cache.cleared[0] != "Ops" {
		t.Fatalf("expected stale Ops cache cleared, got %v", cache.cleared)
	}
	if writer.count() != 1 {
		t.Fatalf("expected a fresh submit after fallback, got %d", writer.count())
	}
	if store.selections["alice"] != "Sales Rep" {
		t.Fatalf("expected selection rewritten, got %q", store.selections["alice"])
	}
}

func TestStoredDesignationWinsWhenStillHeld(t *testing.T) {
	srv := sheetServer(t, defaultSheets())
	defer srv.Close()

	store := newMemStore()
	store.selections["alice"] = "Sales Lead"
	svc := newTestService(t, srv, store, &recordingSubmitter{}, &recordingCache{})

	user, err := svc.Login(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Designation != "Sales Lead" {
		t.Fatalf("expected stored designation to win, got %q", user.Designation)
	}
}

func TestSelectionSubmitIsIdempotent(t *testing.T) {
	srv := sheetServer(t, defaultSheets())
	defer srv.Close()

	store := newMemStore()
	writer := &recordingSubmitter{}
	svc := newTestService(t, srv, store, writer, &recordingCache{})

	user, err := svc.Login(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := svc.Restore(context.Background(), user.Key()); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if writer.count() != 1 {
		t.Fatalf("restore with same designation must not re-submit, got %d submits", writer.count())
	}

	if err := svc.ChangeDesignation(context.Background(), user, "Sales Lead"); err != nil {
		t.Fatalf("change failed: %v", err)
	}
	if writer.count() != 2 {
		t.Fatalf("explicit change should submit, got %d submits", writer.count())
	}
	if err := svc.ChangeDesignation(context.Background(), user, "Sales Lead"); err != nil {
		t.Fatalf("repeat change failed: %v", err)
	}
	if writer.count() != 2 {
		t.Fatalf("repeat change must not re-submit, got %d submits", writer.count())
	}
}

func TestChangeDesignationRejectsUnheld(t *testing.T) {
	srv := sheetServer(t, defaultSheets())
	defer srv.Close()

	svc := newTestService(t, srv, newMemStore(), &recordingSubmitter{}, &recordingCache{})
	user, err := svc.Login(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	var vErr *ValidationError
	if err := svc.ChangeDesignation(context.Background(), user, "CEO"); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for unheld designation, got %v", err)
	}
}

func TestRestoreRefreshesPerformanceSnapshot(t *testing.T) {
	bySheet := defaultSheets()
	srv := sheetServer(t, bySheet)
	defer srv.Close()

	store := newMemStore()
	svc := newTestService(t, srv, store, &recordingSubmitter{}, &recordingCache{})
	user, err := svc.Login(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Performance == nil || user.Performance.ActualWorkDone != "80" {
		t.Fatalf("unexpected snapshot after login: %+v", user.Performance)
	}

	// The sheet moves on between sessions. The stored image still
	// resolves, but restore must not serve last login's numbers.
	bySheet["For Records"] = recordRow("alice", "100", "95", "https://drive.google.com/file/d/ABC123/view")

	restored, err := svc.Restore(context.Background(), user.Key())
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored.Performance == nil || restored.Performance.ActualWorkDone != "95" {
		t.Fatalf("restore should refresh the snapshot, got %+v", restored.Performance)
	}
	if !strings.Contains(restored.Image, "ABC123") {
		t.Fatalf("expected image still resolved, got %q", restored.Image)
	}
}

func TestRestoreCorruptRecordIsCleared(t *testing.T) {
	srv := sheetServer(t, defaultSheets())
	defer srv.Close()

	store := newMemStore()
	store.users["alice"] = []byte("{not json")
	svc := newTestService(t, srv, store, &recordingSubmitter{}, &recordingCache{})

	var cErr *CorruptSessionError
	if _, err := svc.Restore(context.Background(), "alice"); !errors.As(err, &cErr) {
		t.Fatalf("expected CorruptSessionError, got %v", err)
	}
	if record, _ := store.LoadUser(context.Background(), "alice"); record != nil {
		t.Fatalf("corrupt record should have been removed")
	}
}

func TestRestoreMissingSession(t *testing.T) {
	srv := sheetServer(t, defaultSheets())
	defer srv.Close()

	svc := newTestService(t, srv, newMemStore(), &recordingSubmitter{}, &recordingCache{})
	if _, err := svc.Restore(context.Background(), "ghost"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestLogoutRemovesRecordAndSelection(t *testing.T) {
	srv := sheetServer(t, defaultSheets())
	defer srv.Close()

	store := newMemStore()
	svc := newTestService(t, srv, store, &recordingSubmitter{}, &recordingCache{})
	user, err := svc.Login(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(context.Background(), user.Key()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if record, _ := store.LoadUser(context.Background(), "alice"); record != nil {
		t.Fatalf("session record should be gone")
	}
	if store.selections["alice"] != "" {
		t.Fatalf("designation selection should be gone")
	}
}
