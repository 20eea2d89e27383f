package catalog

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/kapu/fitplan-engine-go/pkg/errors"
	"go.uber.org/zap"
)

func newTestResolver(f *fakeFetcher) *Resolver {
	return NewResolver(f, NewNormalizer(2, zap.NewNop()), seed, 50, zap.NewNop())
}

func TestResolveStopsAtFirstMatch(t *testing.T) {
	f := newFakeFetcher()
	f.pages[seed] = page("p2", "Squat")
	f.pages["p2"] = page("p3", "Bench Press")
	f.setErr("p3", errors.NewTransientFetchError("catalog request failed", "p3", 0, nil))

	r := newTestResolver(f)

	entry, err := r.Resolve(context.Background(), "  BENCH press ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Name != "Bench Press" {
		t.Errorf("unexpected entry %q", entry.Name)
	}
	if entry.Category != "Legs" || entry.Description == "" {
		t.Errorf("expected full detail, got %+v", entry)
	}
	if f.callCount() != 2 {
		t.Errorf("expected pagination to stop after the match, got %d fetches", f.callCount())
	}
}

func TestResolvePageFailure(t *testing.T) {
	f := newFakeFetcher()
	f.pages[seed] = page("p2", "Squat")
	f.setErr("p2", errors.NewTransientFetchError("catalog returned status 502", "p2", 502, nil))

	_, err := newTestResolver(f).Resolve(context.Background(), "deadlift")

	var fetchErr *errors.TransientFetchError
	if !stderrors.As(err, &fetchErr) {
		t.Fatalf("expected TransientFetchError, got %v", err)
	}
}

func TestResolveNotFound(t *testing.T) {
	f := newFakeFetcher()
	f.pages[seed] = page("", "Squat")

	_, err := newTestResolver(f).Resolve(context.Background(), "deadlift")

	var notFound *errors.NotFoundError
	if !stderrors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if errors.StatusOf(err) != 404 {
		t.Errorf("expected 404, got %d", errors.StatusOf(err))
	}
}

func TestResolveStopsAtPageCeiling(t *testing.T) {
	f := newFakeFetcher()
	f.pages[seed] = page(seed, "Squat")

	r := NewResolver(f, NewNormalizer(2, zap.NewNop()), seed, 4, zap.NewNop())
	_, err := r.Resolve(context.Background(), "deadlift")

	var notFound *errors.NotFoundError
	if !stderrors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if f.callCount() != 4 {
		t.Errorf("expected exactly 4 fetches, got %d", f.callCount())
	}
}

func TestResolveRejectsBlankQuery(t *testing.T) {
	f := newFakeFetcher()

	_, err := newTestResolver(f).Resolve(context.Background(), "   ")

	var invalid *errors.InvalidRequestError
	if !stderrors.As(err, &invalid) {
		t.Fatalf("expected InvalidRequestError, got %v", err)
	}
	if f.callCount() != 0 {
		t.Errorf("expected no upstream calls, got %d", f.callCount())
	}
}
