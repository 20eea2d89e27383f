package observability

import (
	"context"
	"testing"

	"github.com/kapu/fitplan-engine-go/internal/config"
	"go.uber.org/zap"
)

func TestInitOTelDisabled(t *testing.T) {
	shutdown := InitOTel(context.Background(), config.ObservabilityConfig{Enabled: false}, zap.NewNop())
	if shutdown == nil {
		t.Fatalf("expected a shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0: 0, 0.25: 0.25, 1: 1, 3: 1}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Errorf("clampRatio(%v) = %v, want %v", in, got, want)
		}
	}
}
