package coordinator

import (
	"testing"

	"github.com/kestrel-quant/decisioncore/internal/fixtures"
	"github.com/kestrel-quant/decisioncore/internal/performance"
	"github.com/kestrel-quant/decisioncore/internal/policy"
	"github.com/kestrel-quant/decisioncore/pkg/types"
)

func TestLegacyPolicyAdapterDelegatesToController(t *testing.T) {
	adapter := NewLegacyPolicyAdapter(policy.New(), nil)

	batch := adapter.SelectCandidates(
		[]types.Signal{fixtures.Signal("A", "alpha", 0.9)},
		types.PolicyContext{MaxNewOrdersPerScan: 1, DominantRegime: types.RegimeRanging},
	)

	if len(batch.Decisions) != 1 {
		t.Fatalf("Decisions len = %d, want 1", len(batch.Decisions))
	}
}

func TestLegacyPolicyAdapterAttachesPerformanceStoreWhenPresent(t *testing.T) {
	store := performance.New(nil)
	store.Rebuild([]types.TradeHistory{
		{StrategyName: "alpha", MarketRegime: types.RegimeRanging, LiquidityScore: 60, ProfitLoss: 100},
	})

	adapter := NewLegacyPolicyAdapter(policy.New(), store)
	batch := adapter.SelectCandidates(
		[]types.Signal{fixtures.Signal("A", "alpha", 0.9)},
		types.PolicyContext{MaxNewOrdersPerScan: 1, DominantRegime: types.RegimeRanging},
	)

	if len(batch.Decisions) != 1 {
		t.Fatalf("Decisions len = %d, want 1", len(batch.Decisions))
	}
}
