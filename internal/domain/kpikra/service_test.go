package kpikra

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

func kpiRow(designation, department, name, system, task, role string) string {
	cells := make([]string, 14)
	for i := range cells {
		cells[i] = "null"
	}
	set := func(i int, v string) {
		if v != "" {
			cells[i] = fmt.Sprintf("{\"v\":%q}", v)
		}
	}
	set(0, designation)
	set(1, department)
	set(2, name)
	set(3, system)
	set(4, task)
	set(10, role)
	set(11, "Team A, Team B")
	set(12, "Lead")
	set(13, "Weekly sync")
	return "{\"c\":[" + strings.Join(cells, ",") + "]}"
}

func kpiServer(t *testing.T, rows ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "/*O_o*/setResponse({\"table\":{\"rows\":[%s]}});", strings.Join(rows, ","))
	}))
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

func newTestService(srv *httptest.Server, writer Submitter) *Service {
	client := sheets.NewClient(nil)
	if srv != nil {
		client.BaseURL = srv.URL
	}
	return NewService(client, writer, "kpi-id", "Master")
}

func salesRepRows() []string {
	return []string{
		kpiRow("Sales Rep", "Sales", "Alice", "CRM", "Role banner", "Account owner"),
		kpiRow("Sales Rep", "Sales", "Alice", "CRM", "Banner 2", ""),
		kpiRow("Sales Rep", "Sales", "Alice", "Billing", "Banner 3", ""),
		kpiRow("Sales Rep", "Sales", "Alice", "CRM", "Follow up leads", ""),
		kpiRow("Sales Rep", "Sales", "Alice", "Billing", "Reconcile invoices", ""),
		kpiRow("Ops Manager", "Ops", "Bob", "Fleet", "Dispatch", "Fleet owner"),
	}
}

func TestViewFiltersByDesignation(t *testing.T) {
	srv := kpiServer(t, salesRepRows()...)
	defer srv.Close()

	view, err := newTestService(srv, nil).View(context.Background(), Query{Designation: "sales rep"})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if view.Header.ActualRole != "Account owner" {
		t.Fatalf("header should come from the first matching row, got %q", view.Header.ActualRole)
	}
	if len(view.Header.CommunicationTeam) != 2 {
		t.Fatalf("expected CSV-split team, got %v", view.Header.CommunicationTeam)
	}
	if len(view.Systems) != 2 {
		t.Fatalf("expected distinct systems [CRM Billing], got %v", view.Systems)
	}
	// The banner rows above the table are skipped.
	if len(view.Rows) != 2 || view.Rows[0].TaskName != "Follow up leads" {
		t.Fatalf("unexpected table rows: %+v", view.Rows)
	}
}

func TestViewAdminFiltersNarrow(t *testing.T) {
	srv := kpiServer(t, salesRepRows()...)
	defer srv.Close()

	view, err := newTestService(srv, nil).View(context.Background(), Query{Designation: "Sales Rep", Department: "Ops"})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if len(view.Rows) != 0 || len(view.Systems) != 0 {
		t.Fatalf("conflicting filters should match nothing, got %+v", view)
	}

	view, err = newTestService(srv, nil).View(context.Background(), Query{Department: "Ops", Name: "Bob"})
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if view.Header.ActualRole != "Fleet owner" {
		t.Fatalf("expected Bob's header, got %q", view.Header.ActualRole)
	}
}

func TestSubmitBrief(t *testing.T) {
	writer := &recordingSubmitter{}
	svc := newTestService(nil, writer)

	if err := svc.SubmitBrief(context.Background(), "Alice", "Sales Rep", "  Quarterly focus on renewals  "); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(writer.calls) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(writer.calls))
	}
	call := writer.calls[0]
	if call["action"] != "insertDesignationBrief" || call["brief"] != "Quarterly focus on renewals" {
		t.Fatalf("unexpected dispatch: %v", call)
	}

	if err := svc.SubmitBrief(context.Background(), "Alice", "Sales Rep", "   "); !errors.Is(err, ErrEmptyBrief) {
		t.Fatalf("expected ErrEmptyBrief, got %v", err)
	}
}
