package budget

import (
	"context"
	"time"

	"github.com/quotapilot/gateway/types"
)

// Store is the usage-log persistence boundary (C6): an append-only
// collection of UsageRecord rows, accessed through insert and window
// aggregation. Implementations must be safe for concurrent use.
type Store interface {
	// Insert appends one immutable usage row.
	Insert(ctx context.Context, rec types.UsageRecord) error

	// Aggregate counts rows and sums total_tokens for (provider, model,
	// ts >= since).
	Aggregate(ctx context.Context, provider, model string, since time.Time) (types.WindowStats, error)
}
