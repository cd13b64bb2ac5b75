package sheets

import (
	"context"
	"testing"
)

func TestFlightCancelsSuperseded(t *testing.T) {
	f := NewFlight()

	ctx1, done1 := f.Begin(context.Background(), "kpikra:Sales Rep")
	ctx2, done2 := f.Begin(context.Background(), "kpikra:Sales Rep")
	defer done2()

	if ctx1.Err() == nil {
		t.Fatal("first request should be cancelled by the second")
	}
	if ctx2.Err() != nil {
		t.Fatal("second request should still be live")
	}
	done1()
	if ctx2.Err() != nil {
		t.Fatal("completing a stale request must not cancel the current one")
	}
}

func TestFlightIndependentKeys(t *testing.T) {
	f := NewFlight()

	ctx1, done1 := f.Begin(context.Background(), "kpikra:Sales Rep")
	defer done1()
	ctx2, done2 := f.Begin(context.Background(), "kpikra:Sales Lead")
	defer done2()

	if ctx1.Err() != nil || ctx2.Err() != nil {
		t.Fatal("different resources must not cancel each other")
	}
}

func TestFlightCancelKey(t *testing.T) {
	f := NewFlight()

	ctx, done := f.Begin(context.Background(), "dashboard")
	defer done()
	f.Cancel("dashboard")

	if ctx.Err() == nil {
		t.Fatal("explicit cancel should abort the in-flight request")
	}
}
