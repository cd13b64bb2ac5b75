package sheets

import (
	"context"
	"sync"
)

// Flight enforces a last-request-wins discipline per logical resource:
// beginning a fetch for a key aborts any outstanding fetch for the same key,
// so a superseded response can never overwrite newer state.
type Flight struct {
	mu       sync.Mutex
	gen      uint64
	inflight map[string]flightEntry
}

type flightEntry struct {
	cancel context.CancelFunc
	gen    uint64
}

func NewFlight() *Flight {
	return &Flight{inflight: make(map[string]flightEntry)}
}

// Begin cancels the previous in-flight request for key (if any) and derives
// a context for the new one. The returned func must be called when the fetch
// completes; it releases the slot only if no newer request has claimed it.
func (f *Flight) Begin(ctx context.Context, key string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	f.mu.Lock()
	f.gen++
	gen := f.gen
	if prev, ok := f.inflight[key]; ok {
		prev.cancel()
	}
	f.inflight[key] = flightEntry{cancel: cancel, gen: gen}
	f.mu.Unlock()

	return ctx, func() {
		f.mu.Lock()
		if cur, ok := f.inflight[key]; ok && cur.gen == gen {
			delete(f.inflight, key)
		}
		f.mu.Unlock()
		cancel()
	}
}

// Cancel aborts the in-flight request for key, used when the consuming view
// goes away without issuing a replacement fetch.
func (f *Flight) Cancel(key string) {
	f.mu.Lock()
	if cur, ok := f.inflight[key]; ok {
		cur.cancel()
		delete(f.inflight, key)
	}
	f.mu.Unlock()
}
