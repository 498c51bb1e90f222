// Package regime classifies a window of candles into one of five market
// regimes using Wilder trend/volatility indicators.
package regime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kestrel-quant/decisioncore/internal/indicators"
	"github.com/kestrel-quant/decisioncore/pkg/types"
)

// Config tunes the detector's lookback and ADX/ATR periods.
type Config struct {
	MinCandles      int
	ADXPeriod       int
	ATRPeriod       int
	FastEMAPeriod   int
	SlowEMAPeriod   int
	HighVolATRPct   float64
	TrendingADXMin  float64
	HistoryCapacity int
}

// DefaultConfig returns the thresholds specified for the detector.
func DefaultConfig() Config {
	return Config{
		MinCandles:      50,
		ADXPeriod:       14,
		ATRPeriod:       14,
		FastEMAPeriod:   20,
		SlowEMAPeriod:   50,
		HighVolATRPct:   2.0,
		TrendingADXMin:  25.0,
		HistoryCapacity: 500,
	}
}

// Detector classifies candle windows into a MarketRegime. Analyze is a pure
// function of its input; History/Transitions are purely observational
// bookkeeping layered on top and never feed back into Analyze's result.
type Detector struct {
	logger *zap.Logger
	config Config

	mu          sync.RWMutex
	history     []types.RegimeAnalysis
	transitions int
	last        types.MarketRegime
}

// New creates a Detector. A nil logger is replaced with zap.NewNop().
func New(logger *zap.Logger, config Config) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		logger: logger.Named("regime"),
		config: config,
		last:   types.RegimeUnknown,
	}
}

// Analyze classifies the most recent window of candles. candles must be
// ordered ascending by timestamp; every candle feeds the indicators, and the
// last close is the reference price for ATR%.
func (d *Detector) Analyze(candles []types.Candle) types.RegimeAnalysis {
	if len(candles) < d.config.MinCandles {
		return d.record(types.RegimeAnalysis{
			Regime:      types.RegimeUnknown,
			Description: "Insufficient Data",
		})
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	price := candles[len(candles)-1].Close
	adx := indicators.ADX(candles, d.config.ADXPeriod)
	atr := indicators.ATR(candles, d.config.ATRPeriod)
	atrPct := 0.0
	if price != 0 {
		atrPct = (atr / price) * 100
	}

	if atrPct > d.config.HighVolATRPct {
		return d.record(types.RegimeAnalysis{
			Regime:      types.RegimeHighVolatility,
			ADX:         adx,
			ATRPct:      atrPct,
			TrendScore:  0,
			Description: "High Volatility (ATR > 2%)",
		})
	}

	ema20 := indicators.EMA(closes, d.config.FastEMAPeriod)
	ema50 := indicators.EMA(closes, d.config.SlowEMAPeriod)

	direction := -1.0
	if ema20 > ema50 {
		direction = 1.0
	}
	trendScore := direction * adx / 100

	if adx >= d.config.TrendingADXMin {
		if direction > 0 {
			return d.record(types.RegimeAnalysis{
				Regime:      types.RegimeTrendingUp,
				ADX:         adx,
				ATRPct:      atrPct,
				TrendScore:  trendScore,
				Description: "Trending Up",
			})
		}
		return d.record(types.RegimeAnalysis{
			Regime:      types.RegimeTrendingDown,
			ADX:         adx,
			ATRPct:      atrPct,
			TrendScore:  trendScore,
			Description: "Trending Down",
		})
	}

	return d.record(types.RegimeAnalysis{
		Regime:      types.RegimeRanging,
		ADX:         adx,
		ATRPct:      atrPct,
		TrendScore:  trendScore,
		Description: "Ranging",
	})
}

// record appends the result to the bounded history ring and bumps the
// transition counter, then returns the result unchanged.
func (d *Detector) record(analysis types.RegimeAnalysis) types.RegimeAnalysis {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.last != analysis.Regime {
		d.transitions++
		d.last = analysis.Regime
	}

	d.history = append(d.history, analysis)
	if cap := d.config.HistoryCapacity; cap > 0 && len(d.history) > cap {
		d.history = d.history[len(d.history)-cap:]
	}

	if analysis.Regime == types.RegimeUnknown {
		d.logger.Debug("insufficient candles for regime analysis")
	}

	return analysis
}

// History returns up to the last limit recorded analyses, oldest first.
func (d *Detector) History(limit int) []types.RegimeAnalysis {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if limit <= 0 || limit > len(d.history) {
		limit = len(d.history)
	}
	out := make([]types.RegimeAnalysis, limit)
	copy(out, d.history[len(d.history)-limit:])
	return out
}

// Transitions returns how many times the classified regime has changed
// since this Detector was created.
func (d *Detector) Transitions() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.transitions
}
