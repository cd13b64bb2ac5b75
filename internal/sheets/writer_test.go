package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSubmitReadable2xxIsAccepted(t *testing.T) {
	var gotAction string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotAction = r.FormValue("action")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewWriter(srv.URL, 4, nil)
	outcome := w.Submit(context.Background(), map[string]string{
		"action":      "updateDesignation",
		"designation": "Sales Rep",
	})
	if outcome != OutcomeAccepted {
		t.Fatalf("expected OutcomeAccepted, got %v", outcome)
	}
	if gotAction != "updateDesignation" {
		t.Fatalf("expected action field, got %q", gotAction)
	}
}

func TestSubmitTransportFailureIsUnknownNotError(t *testing.T) {
	w := NewWriter("http://127.0.0.1:0", 4, nil)
	outcome := w.Submit(context.Background(), map[string]string{"action": "insertInSingleColumn"})
	if outcome != OutcomeUnknown {
		t.Fatalf("expected OutcomeUnknown on transport failure, got %v", outcome)
	}
}

func TestEnqueueFullQueueDrops(t *testing.T) {
	w := NewWriter("http://example.invalid", 1, nil)
	w.Enqueue(map[string]string{"action": "a"})
	// Second enqueue must not block even though no worker is draining.
	w.Enqueue(map[string]string{"action": "b"})
}
