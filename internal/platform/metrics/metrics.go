package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Collector tracks request and spreadsheet traffic with atomic counters.
// A single instance is shared by the HTTP middleware, the sheet client and
// the writer queue.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	totalDurationMs uint64
	sheetFetches    uint64
	sheetErrors     uint64
	writerDispatch  uint64
	writerDropped   uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordFetch(err error) {
	atomic.AddUint64(&c.sheetFetches, 1)
	if err != nil {
		atomic.AddUint64(&c.sheetErrors, 1)
	}
}

func (c *Collector) RecordDispatch() {
	atomic.AddUint64(&c.writerDispatch, 1)
}

func (c *Collector) RecordDropped() {
	atomic.AddUint64(&c.writerDropped, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":       total,
		"errorsTotal":         errs,
		"avgDurationMs":       avg,
		"sheetFetchesTotal":   atomic.LoadUint64(&c.sheetFetches),
		"sheetErrorsTotal":    atomic.LoadUint64(&c.sheetErrors),
		"writerDispatchTotal": atomic.LoadUint64(&c.writerDispatch),
		"writerDroppedTotal":  atomic.LoadUint64(&c.writerDropped),
	}
}

// Handler serves the snapshot as JSON for the metrics endpoint.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c.Snapshot())
	}
}
