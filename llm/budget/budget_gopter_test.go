package budget

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"

	"github.com/quotapilot/gateway/types"
)

// TestProperty_HeadroomNeverExceedsConfiguredRPM asserts a bound the unit
// tests only sample: for any RPM cap and any number of prior requests in the
// minute window, the remaining RPM CheckHeadroom reports stays between zero
// and the configured cap.
func TestProperty_HeadroomNeverExceedsConfiguredRPM(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("remaining RPM stays within [0, rpm] regardless of prior request count", prop.ForAll(
		func(rpm int64, priorRequests int) bool {
			if rpm <= 0 || priorRequests < 0 {
				return true
			}

			store := NewMemStore()
			ctx := context.Background()
			for i := 0; i < priorRequests; i++ {
				store.Insert(ctx, types.NewUsageRecord("cerebras", "m1", 10, 10, true, ""))
			}

			limits := Limits{"cerebras": {"default": types.ProviderLimits{RPM: &rpm}}}
			mgr := NewManager(store, limits, zap.NewNop())

			result := mgr.CheckHeadroom(ctx, "cerebras", "m1", 1, 1)
			if result.Remaining.RPM == nil {
				return false
			}
			return *result.Remaining.RPM >= 0 && *result.Remaining.RPM <= rpm
		},
		gen.Int64Range(1, 1000),
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}
