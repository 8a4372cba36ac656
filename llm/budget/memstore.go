package budget

import (
	"context"
	"sync"
	"time"

	"github.com/quotapilot/gateway/types"
)

// MemStore is an in-memory Store implementation: a mutex-guarded append-only
// slice. It satisfies the same window-aggregation semantics as the
// Mongo-backed store and is used in tests and by operators who don't want an
// external dependency for accounting.
type MemStore struct {
	mu   sync.RWMutex
	rows []types.UsageRecord
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Insert(ctx context.Context, rec types.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rec)
	return nil
}

func (s *MemStore) Aggregate(ctx context.Context, provider, model string, since time.Time) (types.WindowStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats types.WindowStats
	for _, r := range s.rows {
		if r.Provider != provider || r.Model != model {
			continue
		}
		if r.Timestamp.Before(since) {
			continue
		}
		stats.Requests++
		stats.Tokens += int64(r.TotalTokens)
	}
	return stats, nil
}

// Rows returns a snapshot of every recorded row, for test assertions.
func (s *MemStore) Rows() []types.UsageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.UsageRecord, len(s.rows))
	copy(out, s.rows)
	return out
}
