package authhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"mis/internal/domain/session"
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

func sheetServer(t *testing.T) *httptest.Server {
	t.Helper()
	master := `{"c":[{"v":"alice"},null,{"v":"Sales"},{"v":"pw123"},{"v":"admin"},{"v":"Sales Rep"}]}`
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sheet") == "Master" {
			fmt.Fprintf(w, "/*O_o*/setResponse({\"table\":{\"rows\":[%s]}});", master)
			return
		}
		fmt.Fprint(w, "/*O_o*/setResponse({\"table\":{\"rows\":[]}});")
	}))
}

func newHandler(t *testing.T, srv *httptest.Server) *Handler {
	t.Helper()
	client := sheets.NewClient(nil)
	client.BaseURL = srv.URL
	store := newMemStore()
	selector := session.NewSelector(store, nil, nil, "kpi-id", "Dashboard", "Designation")
	svc := session.NewService(client, store, selector, "auth-id", "Master", "kpi-id", "For Records")
	return NewHandler(svc, "secret", time.Hour, "https://ui-avatars.com/api/")
}

func TestHandleLoginSuccess(t *testing.T) {
	srv := sheetServer(t)
	defer srv.Close()
	h := newHandler(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice","password":"pw123"}`))
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Token string       `json:"token"`
			User  session.User `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Success || envelope.Data.Token == "" {
		t.Fatalf("expected token in response: %s", rec.Body.String())
	}
	if envelope.Data.User.Designation != "Sales Rep" {
		t.Fatalf("expected active designation, got %q", envelope.Data.User.Designation)
	}
}

func TestHandleLoginBadCredentials(t *testing.T) {
	srv := sheetServer(t)
	defer srv.Close()
	h := newHandler(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice","password":"nope"}`))
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleLoginMissingFields(t *testing.T) {
	srv := sheetServer(t)
	defer srv.Close()
	h := newHandler(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"","password":"x"}`))
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleAvatarResolvesCandidates(t *testing.T) {
	srv := sheetServer(t)
	defer srv.Close()
	h := newHandler(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/auth/avatar?raw=https://drive.google.com/file/d/ABC123/view&name=Alice+Smith", nil)
	rec := httptest.NewRecorder()
	h.HandleAvatar(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "ABC123") || !strings.Contains(body, `"initials":"AS"`) {
		t.Fatalf("unexpected avatar response: %s", body)
	}
}
