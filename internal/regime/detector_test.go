package regime

import (
	"testing"

	"github.com/kestrel-quant/decisioncore/internal/fixtures"
	"github.com/kestrel-quant/decisioncore/pkg/types"
)

func TestAnalyzeInsufficientCandlesIsUnknown(t *testing.T) {
	d := New(nil, DefaultConfig())
	result := d.Analyze(fixtures.TrendingCandles(10, 100, 1))
	if result.Regime != types.RegimeUnknown {
		t.Errorf("Regime = %v, want UNKNOWN for fewer than MinCandles", result.Regime)
	}
}

func TestAnalyzeTrendingUp(t *testing.T) {
	d := New(nil, DefaultConfig())
	result := d.Analyze(fixtures.TrendingCandles(80, 100, 2))
	if result.Regime != types.RegimeTrendingUp {
		t.Errorf("Regime = %v, want TRENDING_UP", result.Regime)
	}
}

func TestAnalyzeHighVolatilityTakesPriorityOverTrend(t *testing.T) {
	d := New(nil, DefaultConfig())
	base := fixtures.TrendingCandles(80, 100, 2)
	volatile := fixtures.ScaledVolatilityCandles(base, 40)
	result := d.Analyze(volatile)
	if result.Regime != types.RegimeHighVolatility {
		t.Errorf("Regime = %v, want HIGH_VOLATILITY once atr_pct exceeds the gate", result.Regime)
	}
}

func TestAnalyzeRanging(t *testing.T) {
	d := New(nil, DefaultConfig())
	// Amplitude 0.5 gives a true range of 1.2 per bar (~1.2% of price), under
	// the 2% ATR gate; ADX is 0 since highs and lows never move.
	result := d.Analyze(fixtures.RangingCandles(80, 100, 0.5))
	if result.Regime != types.RegimeRanging {
		t.Errorf("Regime = %v, want RANGING", result.Regime)
	}
}

func TestAnalyzeIsPureAcrossRepeatedCalls(t *testing.T) {
	d := New(nil, DefaultConfig())
	candles := fixtures.TrendingCandles(80, 100, 2)

	first := d.Analyze(candles)
	second := d.Analyze(candles)

	if first.Regime != second.Regime || first.ADX != second.ADX || first.ATRPct != second.ATRPct {
		t.Errorf("Analyze is not deterministic across repeated calls on the same input: %+v vs %+v", first, second)
	}
}

func TestHistoryAndTransitionsAreObservationalOnly(t *testing.T) {
	d := New(nil, DefaultConfig())
	up := fixtures.TrendingCandles(80, 100, 2)
	ranging := fixtures.RangingCandles(80, 100, 1)

	d.Analyze(up)
	d.Analyze(ranging)
	d.Analyze(up)

	if got := d.Transitions(); got < 2 {
		t.Errorf("Transitions() = %d, want at least 2 after three distinct-regime calls", got)
	}
	history := d.History(0)
	if len(history) != 3 {
		t.Fatalf("History(0) len = %d, want 3", len(history))
	}
}

func TestHistoryRespectsCapacity(t *testing.T) {
	d := New(nil, Config{
		MinCandles: 5, ADXPeriod: 2, ATRPeriod: 2, FastEMAPeriod: 2, SlowEMAPeriod: 3,
		HighVolATRPct: 2.0, TrendingADXMin: 25, HistoryCapacity: 2,
	})
	small := fixtures.TrendingCandles(3, 100, 1)
	for i := 0; i < 5; i++ {
		d.Analyze(small)
	}
	if got := len(d.History(10)); got != 2 {
		t.Errorf("History length = %d, want capped at 2", got)
	}
}
