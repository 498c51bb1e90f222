// Package indicators implements the Wilder trend/volatility math the regime
// detector is built on. It stands in for the indicator-math collaborator
// the core assumes at its boundary.
package indicators

import (
	"math"

	"github.com/kestrel-quant/decisioncore/pkg/types"
)

// SMA is the simple moving average of the last period closes.
func SMA(values []float64, period int) float64 {
	if len(values) < period || period <= 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA is the exponential moving average of values over period, seeded with
// the SMA of the first period samples.
func EMA(values []float64, period int) float64 {
	if len(values) < period || period <= 0 {
		return 0
	}
	multiplier := 2.0 / float64(period+1)
	ema := SMA(values[:period], period)
	for _, v := range values[period:] {
		ema = (v-ema)*multiplier + ema
	}
	return ema
}

// trueRanges computes the per-bar true range series from candle 1..n-1
// against the prior close, Wilder's definition.
func trueRanges(candles []types.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	tr := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		highLow := candles[i].High - candles[i].Low
		highClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowClose := math.Abs(candles[i].Low - candles[i-1].Close)
		tr = append(tr, math.Max(highLow, math.Max(highClose, lowClose)))
	}
	return tr
}

// wilderSmooth applies Wilder's running smoothing to a series, seeded by
// the simple average of the first period values.
func wilderSmooth(values []float64, period int) float64 {
	if len(values) < period || period <= 0 {
		return 0
	}
	avg := SMA(values[:period], period)
	for _, v := range values[period:] {
		avg = (avg*float64(period-1) + v) / float64(period)
	}
	return avg
}

// ATR is Wilder's Average True Range over period, in price units.
func ATR(candles []types.Candle, period int) float64 {
	tr := trueRanges(candles)
	return wilderSmooth(tr, period)
}

// ADX is Wilder's Average Directional Index over period, in [0, 100].
func ADX(candles []types.Candle, period int) float64 {
	if len(candles) < period*2+1 {
		return 0
	}

	plusDM := make([]float64, 0, len(candles)-1)
	minusDM := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low

		switch {
		case upMove > downMove && upMove > 0:
			plusDM = append(plusDM, upMove)
			minusDM = append(minusDM, 0)
		case downMove > upMove && downMove > 0:
			plusDM = append(plusDM, 0)
			minusDM = append(minusDM, downMove)
		default:
			plusDM = append(plusDM, 0)
			minusDM = append(minusDM, 0)
		}
	}

	tr := trueRanges(candles)

	smoothedTR := wilderRunningSeries(tr, period)
	smoothedPlusDM := wilderRunningSeries(plusDM, period)
	smoothedMinusDM := wilderRunningSeries(minusDM, period)

	n := len(smoothedTR)
	if n == 0 {
		return 0
	}
	dx := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if smoothedTR[i] == 0 {
			dx = append(dx, 0)
			continue
		}
		plusDI := 100 * smoothedPlusDM[i] / smoothedTR[i]
		minusDI := 100 * smoothedMinusDM[i] / smoothedTR[i]
		sum := plusDI + minusDI
		if sum == 0 {
			dx = append(dx, 0)
			continue
		}
		dx = append(dx, 100*math.Abs(plusDI-minusDI)/sum)
	}

	return wilderSmooth(dx, period)
}

// wilderRunningSeries returns the full smoothed series (not just the final
// value), seeded by the simple average of the first period values, needed
// to build the +DI/-DI series that feeds DX.
func wilderRunningSeries(values []float64, period int) []float64 {
	if len(values) < period || period <= 0 {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)
	avg := SMA(values[:period], period)
	out = append(out, avg)
	for _, v := range values[period:] {
		avg = (avg*float64(period-1) + v) / float64(period)
		out = append(out, avg)
	}
	return out
}
