package cache

import (
	"context"
	"sync"

	"github.com/kapu/fitplan-engine-go/internal/domain"
)

// PlanStore keeps the last validated plan per request fingerprint. Entries are
// immutable once stored; a later Put for the same fingerprint replaces the
// whole entry.
type PlanStore interface {
	Get(ctx context.Context, fingerprint string) (*domain.PlanCacheEntry, bool, error)
	Put(ctx context.Context, fingerprint string, entry *domain.PlanCacheEntry) error
}

// MemoryPlanStore is the process-local PlanStore. It is unbounded and does not
// survive restarts.
type MemoryPlanStore struct {
	entries sync.Map // fingerprint -> *domain.PlanCacheEntry
}

func NewMemoryPlanStore() *MemoryPlanStore {
	return &MemoryPlanStore{}
}

func (s *MemoryPlanStore) Get(_ context.Context, fingerprint string) (*domain.PlanCacheEntry, bool, error) {
	value, ok := s.entries.Load(fingerprint)
	if !ok {
		return nil, false, nil
	}
	return value.(*domain.PlanCacheEntry), true, nil
}

func (s *MemoryPlanStore) Put(_ context.Context, fingerprint string, entry *domain.PlanCacheEntry) error {
	s.entries.Store(fingerprint, entry)
	return nil
}

// Len counts stored entries.
func (s *MemoryPlanStore) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
