// Package fixtures provides deterministic inputs for the property and
// scenario tests across policy, regime, performance and journal packages.
// Nothing here uses the wall clock or a random source; every generator is
// a pure function of its arguments.
package fixtures

import (
	"math"

	"github.com/kestrel-quant/decisioncore/pkg/types"
)

// TrendingCandles builds n candles with a monotonically increasing close
// and a small, steady true range, suitable for driving the regime detector
// into TRENDING_UP.
func TrendingCandles(n int, start, step float64) []types.Candle {
	out := make([]types.Candle, n)
	price := start
	for i := 0; i < n; i++ {
		high := price + step*0.5
		low := price - step*0.5
		out[i] = types.Candle{
			TimestampMs: int64(i) * 60_000,
			Open:        price,
			High:        high,
			Low:         low,
			Close:       price + step,
			Volume:      1000,
		}
		price += step
	}
	return out
}

// ScaledVolatilityCandles rescales the high/low band of base candles by
// factor, holding open/close fixed, to push ATR% across a threshold
// without otherwise changing the trend.
func ScaledVolatilityCandles(base []types.Candle, factor float64) []types.Candle {
	out := make([]types.Candle, len(base))
	for i, c := range base {
		mid := (c.Open + c.Close) / 2
		halfRange := (c.High - c.Low) / 2 * factor
		out[i] = types.Candle{
			TimestampMs: c.TimestampMs,
			Open:        c.Open,
			Close:       c.Close,
			High:        mid + halfRange,
			Low:         mid - halfRange,
			Volume:      c.Volume,
		}
	}
	return out
}

// RangingCandles builds n candles oscillating around a midpoint with a
// fixed small amplitude, suitable for driving RANGING classification. Each
// bar's true range is 2*amplitude+0.2, so the amplitude must keep that under
// 2% of mid or the regime detector reports HIGH_VOLATILITY instead.
func RangingCandles(n int, mid, amplitude float64) []types.Candle {
	out := make([]types.Candle, n)
	for i := 0; i < n; i++ {
		offset := amplitude * math.Sin(float64(i)/3.0)
		close := mid + offset
		out[i] = types.Candle{
			TimestampMs: int64(i) * 60_000,
			Open:        mid,
			High:        mid + amplitude + 0.1,
			Low:         mid - amplitude - 0.1,
			Close:       close,
			Volume:      1000,
		}
	}
	return out
}

// Signal returns a baseline candidate signal; fields can be overridden on
// the returned value by the caller.
func Signal(market, strategy string, strength float64) types.Signal {
	return types.Signal{
		Kind:                 types.SignalBuy,
		Market:               market,
		StrategyName:         strategy,
		Strength:             strength,
		EntryPrice:           100,
		StopLoss:             95,
		TakeProfit:           110,
		PositionSizeRatio:    0.1,
		Reason:               "fixture",
		TimestampMs:          1_700_000_000_000,
		Score:                0.5,
		LiquidityScore:       60,
		Volatility:           2,
		ExpectedValue:        0.002,
		MarketRegime:         types.RegimeRanging,
		StrategyTradeCount:   0,
		StrategyWinRate:      0,
		StrategyProfitFactor: 0,
	}
}

// Trade returns a TradeHistory entry for performance-store tests.
func Trade(strategy string, regime types.MarketRegime, liquidity, pnl float64) types.TradeHistory {
	return types.TradeHistory{
		StrategyName:   strategy,
		MarketRegime:   regime,
		LiquidityScore: liquidity,
		ProfitLoss:     pnl,
	}
}
