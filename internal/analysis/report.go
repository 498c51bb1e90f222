// Package analysis folds a realized trade sequence into a PnL/risk report.
// It is purely additive reporting: nothing here feeds back into
// internal/performance or internal/policy, which stay exactly as their
// own specs define them.
package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one realized, closed trade, richer than performance.TradeHistory
// since it carries timing and per-trade decimal precision for reporting.
type Trade struct {
	Market     string
	PnL        decimal.Decimal
	ExecutedAt time.Time
}

// Report is a full performance breakdown over a trade sequence.
type Report struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       decimal.Decimal
	GrossProfit   decimal.Decimal
	GrossLoss     decimal.Decimal
	ProfitFactor  decimal.Decimal
	NetPnL        decimal.Decimal
	SharpeRatio   decimal.Decimal
	SortinoRatio  decimal.Decimal
	MaxDrawdown   decimal.Decimal
	LongestWinStreak int
	LongestLossStreak int
	ByMarket      map[string]decimal.Decimal
	ByWeekday     map[time.Weekday]decimal.Decimal
}

// Build computes a Report over trades. trades need not be sorted by time;
// Build sorts a copy internally for streak and drawdown calculations.
func Build(trades []Trade) Report {
	report := Report{
		ByMarket:  make(map[string]decimal.Decimal),
		ByWeekday: make(map[time.Weekday]decimal.Decimal),
	}
	if len(trades) == 0 {
		return report
	}

	ordered := make([]Trade, len(trades))
	copy(ordered, trades)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ExecutedAt.Before(ordered[j].ExecutedAt) })

	returns := make([]float64, 0, len(ordered))
	equity := decimal.Zero
	peak := decimal.Zero
	maxDrawdown := decimal.Zero

	curWinStreak, curLossStreak := 0, 0

	for _, t := range ordered {
		report.TotalTrades++
		report.NetPnL = report.NetPnL.Add(t.PnL)
		report.ByMarket[t.Market] = report.ByMarket[t.Market].Add(t.PnL)
		report.ByWeekday[t.ExecutedAt.Weekday()] = report.ByWeekday[t.ExecutedAt.Weekday()].Add(t.PnL)

		switch {
		case t.PnL.IsPositive():
			report.WinningTrades++
			report.GrossProfit = report.GrossProfit.Add(t.PnL)
			curWinStreak++
			curLossStreak = 0
		case t.PnL.IsNegative():
			report.LosingTrades++
			report.GrossLoss = report.GrossLoss.Add(t.PnL.Abs())
			curLossStreak++
			curWinStreak = 0
		}
		if curWinStreak > report.LongestWinStreak {
			report.LongestWinStreak = curWinStreak
		}
		if curLossStreak > report.LongestLossStreak {
			report.LongestLossStreak = curLossStreak
		}

		equity = equity.Add(t.PnL)
		if equity.GreaterThan(peak) {
			peak = equity
		}
		drawdown := peak.Sub(equity)
		if drawdown.GreaterThan(maxDrawdown) {
			maxDrawdown = drawdown
		}

		f, _ := t.PnL.Float64()
		returns = append(returns, f)
	}

	report.MaxDrawdown = maxDrawdown

	if report.TotalTrades > 0 {
		report.WinRate = decimal.NewFromInt(int64(report.WinningTrades)).Div(decimal.NewFromInt(int64(report.TotalTrades)))
	}
	if report.GrossLoss.IsPositive() {
		report.ProfitFactor = report.GrossProfit.Div(report.GrossLoss)
	}

	report.SharpeRatio = decimal.NewFromFloat(sharpe(returns))
	report.SortinoRatio = decimal.NewFromFloat(sortino(returns))

	return report
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

func sharpe(returns []float64) float64 {
	m := mean(returns)
	sd := stddev(returns, m)
	if sd == 0 {
		return 0
	}
	return m / sd
}

func sortino(returns []float64) float64 {
	m := mean(returns)

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return 0
	}
	dsd := stddev(downside, 0)
	if dsd == 0 {
		return 0
	}
	return m / dsd
}
