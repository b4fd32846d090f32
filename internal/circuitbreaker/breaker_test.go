package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func failing(context.Context) error { return errBoom }
func passing(context.Context) error { return nil }

type transition struct{ from, to State }

func newTestBreaker(maxFailures int, reset time.Duration) (*CircuitBreaker, *time.Time, *[]transition) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var seen []transition
	cb := New(Options{
		Name:         "test",
		MaxFailures:  maxFailures,
		ResetTimeout: reset,
		OnStateChange: func(name string, from, to State) {
			if name != "test" {
				panic("unexpected breaker name " + name)
			}
			seen = append(seen, transition{from, to})
		},
	})
	cb.now = func() time.Time { return clock }
	return cb, &clock, &seen
}

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	ctx := context.Background()
	cb, _, seen := newTestBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		if err := cb.Call(ctx, failing); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: expected errBoom, got %v", i, err)
		}
	}

	if cb.State() != StateOpen {
		t.Fatalf("expected open, got %v", cb.State())
	}

	called := false
	err := cb.Call(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Error("fn should not run while open")
	}
	if len(*seen) != 1 || (*seen)[0] != (transition{StateClosed, StateOpen}) {
		t.Errorf("unexpected transitions %v", *seen)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	ctx := context.Background()
	cb, _, _ := newTestBreaker(2, time.Minute)

	_ = cb.Call(ctx, failing)
	_ = cb.Call(ctx, passing)
	_ = cb.Call(ctx, failing)

	if cb.State() != StateClosed {
		t.Errorf("expected closed, got %v", cb.State())
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		probe     func(context.Context) error
		wantState State
	}{
		{"probe succeeds", passing, StateClosed},
		{"probe fails", failing, StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, clock, seen := newTestBreaker(1, time.Minute)
			_ = cb.Call(ctx, failing)

			*clock = clock.Add(2 * time.Minute)
			_ = cb.Call(ctx, tt.probe)

			if cb.State() != tt.wantState {
				t.Errorf("expected %v, got %v", tt.wantState, cb.State())
			}
			last := (*seen)[len(*seen)-1]
			if last.from != StateHalfOpen || last.to != tt.wantState {
				t.Errorf("unexpected last transition %v", last)
			}
		})
	}
}

func TestBreakerHalfOpenAllowsSingleProbe(t *testing.T) {
	ctx := context.Background()
	cb, clock, _ := newTestBreaker(1, time.Minute)
	_ = cb.Call(ctx, failing)
	*clock = clock.Add(2 * time.Minute)

	err := cb.Call(ctx, func(ctx context.Context) error {
		if inner := cb.Call(ctx, passing); !errors.Is(inner, ErrTooManyRequests) {
			t.Errorf("expected ErrTooManyRequests during probe, got %v", inner)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
}

func TestBreakerReset(t *testing.T) {
	ctx := context.Background()
	cb, _, seen := newTestBreaker(1, time.Hour)
	_ = cb.Call(ctx, failing)

	cb.Reset()

	state, failures, _ := cb.Stats()
	if state != StateClosed || failures != 0 {
		t.Errorf("expected closed with 0 failures, got %v/%d", state, failures)
	}
	if got := (*seen)[len(*seen)-1]; got != (transition{StateOpen, StateClosed}) {
		t.Errorf("unexpected transition %v", got)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateClosed:   "closed",
		StateHalfOpen: "half-open",
		StateOpen:     "open",
		State(42):     "unknown",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
