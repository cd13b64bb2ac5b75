package adminhandler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"mis/internal/domain/dashboard"
	"mis/internal/domain/kpikra"
	"mis/internal/domain/report"
	"mis/internal/sheets"
)

func dataRow(fms, dept, task, person, target, totalAch, workDone, pending string) string {
	cells := make([]string, 23)
	for i := range cells {
		cells[i] = "null"
	}
	set := func(i int, v string) { cells[i] = fmt.Sprintf("{\"v\":%q}", v) }
	set(0, fms)
	set(1, dept)
	set(2, task)
	set(3, person)
	set(8, target)
	set(10, totalAch)
	set(12, workDone)
	set(15, pending)
	return "{\"c\":[" + strings.Join(cells, ",") + "]}"
}

func gvizServer(t *testing.T) *httptest.Server {
	t.Helper()
	rows := strings.Join([]string{
		dataRow("FMS-A", "Sales", "T1", "Alice", "100", "80", "90", "2"),
		dataRow("FMS-A", "Sales", "T2", "Bob", "100", "60", "50", "9"),
	}, ",")
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "/*O_o*/setResponse({\"table\":{\"rows\":[%s]}});", rows)
	}))
}

func newTestHandler(t *testing.T, srv *httptest.Server) http.Handler {
	t.Helper()
	client := sheets.NewClient(nil)
	client.BaseURL = srv.URL

	h := NewHandler(
		dashboard.NewService(client, nil, "sid", "Data", "For Records"),
		kpikra.NewService(client, nil, "sid", "Master"),
		report.NewService(client, "sid", "Data", ""),
		nil,
	)
	router := chi.NewRouter()
	router.Route("/admin", func(r chi.Router) { h.RegisterRoutes(r) })
	return router
}

func TestHandleDashboard(t *testing.T) {
	srv := gvizServer(t)
	defer srv.Close()
	router := newTestHandler(t, srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard?name=ali", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Alice") || strings.Contains(body, "\"name\":\"Bob\"") {
		t.Fatalf("substring name filter not applied: %s", body)
	}
}

func TestHandleReportRejectsBadDate(t *testing.T) {
	srv := gvizServer(t)
	defer srv.Close()
	router := newTestHandler(t, srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/report?from=yesterday", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleReportPDFStreamsDocument(t *testing.T) {
	srv := gvizServer(t)
	defer srv.Close()
	router := newTestHandler(t, srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/report/pdf", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatalf("body does not look like a PDF")
	}
}

func TestHandlePendingTasksRanked(t *testing.T) {
	srv := gvizServer(t)
	defer srv.Close()
	router := newTestHandler(t, srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/pending-tasks", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Index(body, "Bob") > strings.Index(body, "Alice") {
		t.Fatalf("expected Bob (9 pending) ranked before Alice (2): %s", body)
	}
}
