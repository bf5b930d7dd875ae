package reminder

import (
	"context"
	"sync"
	"time"
)

// Suppressor remembers keys that should stay silent until their ttl passes.
type Suppressor interface {
	Suppressed(ctx context.Context, key string, now time.Time) (bool, error)
	Suppress(ctx context.Context, key string, now time.Time, ttl time.Duration) error
}

// LowStockKey scopes a low inventory alert to one medicine and one local day.
func LowStockKey(medicineID string, now time.Time) string {
	return "lowstock:" + medicineID + ":" + now.Format(DateLayout)
}

// ExpiringSet is an in-process Suppressor. Entries are checked against the
// caller's clock and pruned lazily, there is no background timer.
type ExpiringSet struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewExpiringSet() *ExpiringSet {
	return &ExpiringSet{entries: make(map[string]time.Time)}
}

func (s *ExpiringSet) Suppressed(_ context.Context, key string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(now)
	_, ok := s.entries[key]
	return ok, nil
}

func (s *ExpiringSet) Suppress(_ context.Context, key string, now time.Time, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(now)
	s.entries[key] = now.Add(ttl)
	return nil
}

// Len returns the number of live entries as of now.
func (s *ExpiringSet) Len(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(now)
	return len(s.entries)
}

func (s *ExpiringSet) prune(now time.Time) {
	for k, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, k)
		}
	}
}
