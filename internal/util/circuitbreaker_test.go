package util

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, time.Minute, 0, nil, zap.NewNop())

	cb.RecordFailure(0)
	if !cb.CanExecute() {
		t.Fatalf("expected circuit to stay closed after one failure")
	}

	cb.RecordFailure(0)
	if cb.CanExecute() {
		t.Fatalf("expected circuit to open at threshold")
	}

	status := cb.Status()
	if status.State != CircuitStateOpen || status.NextRetryTime == nil {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestCircuitBreakerHalfOpensAfterTimeout(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", 1, 30*time.Second, 0, nil, zap.NewNop())
	cb.now = func() time.Time { return now }

	cb.RecordFailure(0)
	if cb.State() != CircuitStateOpen {
		t.Fatalf("expected open circuit")
	}

	now = now.Add(31 * time.Second)
	if cb.State() != CircuitStateHalfOpen {
		t.Fatalf("expected half-open circuit after timeout")
	}

	cb.RecordSuccess()
	if cb.State() != CircuitStateClosed {
		t.Fatalf("expected closed circuit after success")
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", 3, time.Second, 0, nil, zap.NewNop())
	cb.now = func() time.Time { return now }

	cb.RecordFailure(0)
	cb.RecordFailure(0)
	cb.RecordFailure(0)
	now = now.Add(2 * time.Second)
	if cb.State() != CircuitStateHalfOpen {
		t.Fatalf("expected half-open circuit")
	}

	cb.RecordFailure(time.Hour)
	if cb.State() != CircuitStateOpen {
		t.Fatalf("expected a single half-open failure to reopen the circuit")
	}
}
