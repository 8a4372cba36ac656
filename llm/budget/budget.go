package budget

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quotapilot/gateway/types"
)

const (
	minuteWindow = 60 * time.Second
	dayWindow    = 24 * time.Hour
)

// Manager is the Budget Manager (C4): it records usage through a Store and
// computes headroom against a configured Limits table. It is stateless
// across calls except for the loaded limits table, and is safe for
// concurrent use.
type Manager struct {
	store  Store
	limits Limits
	logger *zap.Logger
}

// NewManager creates a Manager backed by store, with limits loaded once at
// construction time.
func NewManager(store Store, limits Limits, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, limits: limits, logger: logger}
}

// RecordUsage inserts one immutable usage row. Storage failures are logged,
// never returned: the request path must not fail because the ledger is
// unavailable.
func (m *Manager) RecordUsage(ctx context.Context, provider, model string, requestTokens, responseTokens int, success bool, errorCode string) {
	rec := types.NewUsageRecord(provider, model, requestTokens, responseTokens, success, errorCode)
	if err := m.store.Insert(ctx, rec); err != nil {
		m.logger.Warn("usage record write failed",
			zap.String("provider", provider),
			zap.String("model", model),
			zap.Error(err))
	}
}

// GetUsageStats aggregates the minute and day windows for (provider, model).
// On aggregation error it returns zeros and logs: fail-open for
// availability.
func (m *Manager) GetUsageStats(ctx context.Context, provider, model string) types.UsageStats {
	now := time.Now().UTC()

	minute, err := m.store.Aggregate(ctx, provider, model, now.Add(-minuteWindow))
	if err != nil {
		m.logger.Warn("usage aggregation failed", zap.String("window", "minute"), zap.Error(err))
		minute = types.WindowStats{}
	}

	day, err := m.store.Aggregate(ctx, provider, model, now.Add(-dayWindow))
	if err != nil {
		m.logger.Warn("usage aggregation failed", zap.String("window", "day"), zap.Error(err))
		day = types.WindowStats{}
	}

	return types.UsageStats{Minute: minute, Day: day}
}

// CheckHeadroom evaluates every configured cap for (provider, model) against
// the current sliding-window usage plus the supplied estimates. If no cap is
// configured, it returns can_proceed=true without querying the store.
func (m *Manager) CheckHeadroom(ctx context.Context, provider, model string, estPromptTokens, estCompletionTokens int) types.HeadroomResult {
	lim := m.limits.Lookup(provider, model)
	if lim.AllNil() {
		return types.HeadroomResult{CanProceed: true}
	}

	stats := m.GetUsageStats(ctx, provider, model)
	estTotal := int64(estPromptTokens + estCompletionTokens)

	result := types.HeadroomResult{CanProceed: true}

	if lim.RPM != nil {
		ok := stats.Minute.Requests < *lim.RPM
		result.CanProceed = result.CanProceed && ok
		remaining := clampNonNegative(*lim.RPM - stats.Minute.Requests)
		result.Remaining.RPM = &remaining
	}
	if lim.RPD != nil {
		ok := stats.Day.Requests < *lim.RPD
		result.CanProceed = result.CanProceed && ok
		remaining := clampNonNegative(*lim.RPD - stats.Day.Requests)
		result.Remaining.RPD = &remaining
	}
	if lim.TPM != nil {
		ok := stats.Minute.Tokens+estTotal <= *lim.TPM
		result.CanProceed = result.CanProceed && ok
		remaining := clampNonNegative(*lim.TPM - stats.Minute.Tokens)
		result.Remaining.TPM = &remaining
	}
	if lim.TPD != nil {
		ok := stats.Day.Tokens+estTotal <= *lim.TPD
		result.CanProceed = result.CanProceed && ok
		remaining := clampNonNegative(*lim.TPD - stats.Day.Tokens)
		result.Remaining.TPD = &remaining
	}

	return result
}

// EstimateFromText is the fixed token-estimation heuristic used for
// headroom checks: max(1, floor(len(text)/4)). This is never replaced by a
// real tokenizer -- it is a law the headroom arithmetic is pinned to, not an
// approximation to be improved.
func EstimateFromText(text string) int {
	n := int(math.Floor(float64(len(text)) / 4))
	if n < 1 {
		return 1
	}
	return n
}

// EstimatePromptTokens joins message contents with newlines and applies
// EstimateFromText, mirroring the Router's estimation input.
func EstimatePromptTokens(contents []string) int {
	return EstimateFromText(strings.Join(contents, "\n"))
}

// clampNonNegative floors a remaining-headroom value at zero: a cap already
// exceeded reports zero remaining, never negative.
func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
