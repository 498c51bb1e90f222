package policy

import (
	"testing"

	"github.com/kestrel-quant/decisioncore/internal/fixtures"
	"github.com/kestrel-quant/decisioncore/internal/performance"
	"github.com/kestrel-quant/decisioncore/pkg/types"
)

func TestSelectAccountingInvariant(t *testing.T) {
	c := New()
	candidates := []types.Signal{
		fixtures.Signal("BTC-USD", "alpha", 0.9),
		fixtures.Signal("ETH-USD", "alpha", 0.05), // fails strength gate
		fixtures.Signal("SOL-USD", "alpha", 0.8),
		fixtures.Signal("DOGE-USD", "alpha", 0.7),
	}

	batch := c.Select(Input{
		Candidates:          candidates,
		MaxNewOrdersPerScan: 2,
		DominantRegime:      types.RegimeRanging,
	})

	if len(batch.Decisions) != len(candidates) {
		t.Fatalf("len(Decisions) = %d, want %d", len(batch.Decisions), len(candidates))
	}
	if int(batch.DroppedByPolicy)+len(batch.SelectedCandidates) != len(candidates) {
		t.Errorf("DroppedByPolicy(%d) + selected(%d) != total(%d)",
			batch.DroppedByPolicy, len(batch.SelectedCandidates), len(candidates))
	}

	selectedCount := 0
	for _, d := range batch.Decisions {
		if d.Selected {
			selectedCount++
			if d.Reason != types.ReasonSelected {
				t.Errorf("selected decision has reason %q, want %q", d.Reason, types.ReasonSelected)
			}
		} else if d.Reason == "" {
			t.Errorf("dropped decision for market %q has empty reason", d.Market)
		}
	}
	if selectedCount != len(batch.SelectedCandidates) {
		t.Errorf("selected decision count = %d, want %d", selectedCount, len(batch.SelectedCandidates))
	}
}

// S1: capacity cutoff plus deterministic tie-break ordering.
func TestSelectCapacityCutoffAndTieBreak(t *testing.T) {
	c := New()
	candidates := []types.Signal{
		fixtures.Signal("A", "alpha", 0.70),
		fixtures.Signal("B", "alpha", 0.70),
		fixtures.Signal("C", "alpha", 0.70),
	}
	// Identical fields across candidates except market, so policy_score,
	// strength and score tie exactly; the sort must fall back to input index.
	for i := range candidates {
		candidates[i].Score = 0.5
		candidates[i].LiquidityScore = 60
		candidates[i].Volatility = 2
		candidates[i].ExpectedValue = 0.001
	}

	batch := c.Select(Input{
		Candidates:          candidates,
		MaxNewOrdersPerScan: 2,
		DominantRegime:      types.RegimeRanging,
	})

	if len(batch.SelectedCandidates) != 2 {
		t.Fatalf("len(SelectedCandidates) = %d, want 2", len(batch.SelectedCandidates))
	}
	if batch.SelectedCandidates[0].Market != "A" || batch.SelectedCandidates[1].Market != "B" {
		t.Errorf("tie-break should preserve input order A, B; got %s, %s",
			batch.SelectedCandidates[0].Market, batch.SelectedCandidates[1].Market)
	}
	if batch.Decisions[2].Reason != types.ReasonDroppedCapacity {
		t.Errorf("third candidate reason = %q, want %q", batch.Decisions[2].Reason, types.ReasonDroppedCapacity)
	}
}

func TestSelectDeterministicAcrossRepeatedCalls(t *testing.T) {
	c := New()
	candidates := []types.Signal{
		fixtures.Signal("A", "alpha", 0.9),
		fixtures.Signal("B", "beta", 0.6),
		fixtures.Signal("C", "gamma", 0.75),
	}
	in := Input{Candidates: candidates, MaxNewOrdersPerScan: 5, DominantRegime: types.RegimeTrendingUp}

	first := c.Select(in)
	second := c.Select(in)

	if len(first.SelectedCandidates) != len(second.SelectedCandidates) {
		t.Fatalf("selected candidate count differs across calls")
	}
	for i := range first.SelectedCandidates {
		if first.SelectedCandidates[i].Market != second.SelectedCandidates[i].Market {
			t.Errorf("selection order differs across calls at index %d: %s vs %s",
				i, first.SelectedCandidates[i].Market, second.SelectedCandidates[i].Market)
		}
	}
}

// S2: strength gate tightens under higher regime stress.
func TestSelectStrengthGateTightensUnderStress(t *testing.T) {
	c := New()
	signal := fixtures.Signal("A", "alpha", 0.40)

	calm := c.Select(Input{
		Candidates:          []types.Signal{signal},
		MaxNewOrdersPerScan: 1,
		DominantRegime:      types.RegimeTrendingUp, // stress 0.2, min_strength = 0.38
	})
	if !calm.Decisions[0].Selected {
		t.Errorf("strength 0.40 should clear the gate under low stress (min ~0.38), got reason %q", calm.Decisions[0].Reason)
	}

	stressed := c.Select(Input{
		Candidates:          []types.Signal{signal},
		MaxNewOrdersPerScan: 1,
		DominantRegime:      types.RegimeTrendingDown, // stress 1.0, min_strength = 0.46
	})
	if stressed.Decisions[0].Selected {
		t.Errorf("strength 0.40 should fail the gate under high stress (min ~0.46)")
	}
	if stressed.Decisions[0].Reason != types.ReasonDroppedLowStrength {
		t.Errorf("reason = %q, want %q", stressed.Decisions[0].Reason, types.ReasonDroppedLowStrength)
	}
}

// S3: small-seed mode applies an additional post-sort liquidity/volatility
// filter on top of the ordinary gates.
func TestSelectSmallSeedLiquidityVolatilityFilter(t *testing.T) {
	c := New()
	thin := fixtures.Signal("THIN", "alpha", 0.8)
	thin.LiquidityScore = 30 // below the 45 small-seed floor
	thin.Volatility = 1

	volatile := fixtures.Signal("LOUD", "alpha", 0.8)
	volatile.LiquidityScore = 80
	volatile.Volatility = 9 // above the 8 small-seed ceiling

	healthy := fixtures.Signal("OK", "alpha", 0.8)
	healthy.LiquidityScore = 80
	healthy.Volatility = 1

	batch := c.Select(Input{
		Candidates:          []types.Signal{thin, volatile, healthy},
		SmallSeedMode:       true,
		MaxNewOrdersPerScan: 5,
		DominantRegime:      types.RegimeRanging,
	})

	if len(batch.SelectedCandidates) != 1 || batch.SelectedCandidates[0].Market != "OK" {
		t.Fatalf("expected only OK to survive small-seed liq/vol filter, got %+v", batch.SelectedCandidates)
	}
	if batch.Decisions[0].Reason != types.ReasonDroppedSmallSeedLiqVol {
		t.Errorf("THIN reason = %q, want %q", batch.Decisions[0].Reason, types.ReasonDroppedSmallSeedLiqVol)
	}
	if batch.Decisions[1].Reason != types.ReasonDroppedSmallSeedLiqVol {
		t.Errorf("LOUD reason = %q, want %q", batch.Decisions[1].Reason, types.ReasonDroppedSmallSeedLiqVol)
	}
}

func TestSelectSmallSeedQualityGateAtEntry(t *testing.T) {
	c := New()
	poor := fixtures.Signal("POOR", "alpha", 0.8)
	poor.StrategyTradeCount = 15
	poor.StrategyWinRate = 0.30
	poor.StrategyProfitFactor = 0.5

	batch := c.Select(Input{
		Candidates:          []types.Signal{poor},
		SmallSeedMode:       true,
		MaxNewOrdersPerScan: 5,
		DominantRegime:      types.RegimeRanging,
	})

	if batch.Decisions[0].Selected {
		t.Error("poor-quality strategy with enough trades should fail the small-seed entry gate")
	}
	if batch.Decisions[0].Reason != types.ReasonDroppedSmallSeedQuality {
		t.Errorf("reason = %q, want %q", batch.Decisions[0].Reason, types.ReasonDroppedSmallSeedQuality)
	}
}

// S4: history-driven demotion via the performance store's strategy and
// bucket-level modifiers should be able to flip relative ranking.
func TestSelectHistoryDemotesWeakStrategy(t *testing.T) {
	store := performance.New(nil)
	store.Rebuild([]types.TradeHistory{
		{StrategyName: "weak", MarketRegime: types.RegimeRanging, LiquidityScore: 60, ProfitLoss: -50},
		{StrategyName: "weak", MarketRegime: types.RegimeRanging, LiquidityScore: 60, ProfitLoss: -50},
		{StrategyName: "weak", MarketRegime: types.RegimeRanging, LiquidityScore: 60, ProfitLoss: -50},
		{StrategyName: "weak", MarketRegime: types.RegimeRanging, LiquidityScore: 60, ProfitLoss: -50},
		{StrategyName: "weak", MarketRegime: types.RegimeRanging, LiquidityScore: 60, ProfitLoss: -50},
		{StrategyName: "weak", MarketRegime: types.RegimeRanging, LiquidityScore: 60, ProfitLoss: -50},
		{StrategyName: "weak", MarketRegime: types.RegimeRanging, LiquidityScore: 60, ProfitLoss: -50},
		{StrategyName: "weak", MarketRegime: types.RegimeRanging, LiquidityScore: 60, ProfitLoss: -50},
		{StrategyName: "weak", MarketRegime: types.RegimeRanging, LiquidityScore: 60, ProfitLoss: -50},
		{StrategyName: "weak", MarketRegime: types.RegimeRanging, LiquidityScore: 60, ProfitLoss: 10},
	})

	weak := fixtures.Signal("WEAK", "weak", 0.70)
	strong := fixtures.Signal("STRONG", "fresh", 0.70)
	weak.Score = 0.5
	strong.Score = 0.5

	c := New()
	batch := c.Select(Input{
		Candidates:          []types.Signal{weak, strong},
		MaxNewOrdersPerScan: 1,
		DominantRegime:      types.RegimeRanging,
		Performance:         &PerformanceView{ByStrategy: store},
	})

	if len(batch.SelectedCandidates) != 1 || batch.SelectedCandidates[0].Market != "STRONG" {
		t.Fatalf("expected the strategy with no losing history to be preferred, got %+v", batch.SelectedCandidates)
	}
}

func TestRegimeStressDefinedForAllRegimes(t *testing.T) {
	regimes := []types.MarketRegime{
		types.RegimeUnknown, types.RegimeTrendingUp, types.RegimeTrendingDown,
		types.RegimeRanging, types.RegimeHighVolatility,
	}
	for _, r := range regimes {
		s := regimeStress(r)
		if s < 0 || s > 1 {
			t.Errorf("regimeStress(%v) = %v, want in [0,1]", r, s)
		}
	}
}
