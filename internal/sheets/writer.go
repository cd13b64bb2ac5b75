package sheets

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"mis/internal/platform/metrics"
)

// Outcome models the degraded write contract: the script endpoint is invoked
// in a mode where the response is usually unreadable, so the best a caller
// can learn is that the request was dispatched.
type Outcome int

const (
	// OutcomeUnknown: the request went out but the result cannot be observed.
	OutcomeUnknown Outcome = iota
	// OutcomeAccepted: a readable 2xx actually came back.
	OutcomeAccepted
)

// Writer posts form-encoded fields to the fixed Apps-Script endpoint.
// Failures are logged, never surfaced; primary flows must not block on it.
type Writer struct {
	URL     string
	HTTP    *http.Client
	Metrics *metrics.Collector

	queue chan map[string]string
}

func NewWriter(scriptURL string, queueSize int, m *metrics.Collector) *Writer {
	return &Writer{
		URL:     scriptURL,
		HTTP:    http.DefaultClient,
		Metrics: m,
		queue:   make(chan map[string]string, queueSize),
	}
}

// Submit dispatches synchronously and reports the best-effort outcome.
func (w *Writer) Submit(ctx context.Context, fields map[string]string) Outcome {
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, strings.NewReader(form.Encode()))
	if err != nil {
		slog.Warn("sheet write request build failed", "action", fields["action"], "err", err)
		return OutcomeUnknown
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if w.Metrics != nil {
		w.Metrics.RecordDispatch()
	}

	resp, err := w.HTTP.Do(req)
	if err != nil {
		slog.Warn("sheet write dispatch failed", "action", fields["action"], "err", err)
		return OutcomeUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if _, err := io.Copy(io.Discard, resp.Body); err == nil {
			return OutcomeAccepted
		}
	}
	return OutcomeUnknown
}

// Enqueue hands fields to the background worker; a full queue drops the
// write with a log line rather than blocking the caller.
func (w *Writer) Enqueue(fields map[string]string) {
	select {
	case w.queue <- fields:
	default:
		if w.Metrics != nil {
			w.Metrics.RecordDropped()
		}
		slog.Warn("writer queue full, dropping submit", "action", fields["action"])
	}
}

// Start runs the dispatch worker until ctx is done.
func (w *Writer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case fields := <-w.queue:
				w.Submit(ctx, fields)
			}
		}
	}()
}
