// Package policy implements the adaptive policy controller: the scoring and
// selection engine that turns a batch of candidate signals into an ordered,
// capacity-limited set of admitted candidates plus an auditable decision
// record per candidate.
package policy

import (
	"sort"

	"github.com/kestrel-quant/decisioncore/internal/performance"
	"github.com/kestrel-quant/decisioncore/pkg/types"
)

// PerformanceView is the read-only subset of the performance store the
// controller borrows for the duration of one Select call. ByStrategy serves
// both the strategy-level and the bucket-level lookups; a nil view or a nil
// ByStrategy disables the bucket modifier and makes the strategy modifier
// fall back to each candidate's embedded stats.
type PerformanceView struct {
	ByStrategy *performance.Store
}

// Input is everything Select needs to score and rank one cycle's candidates.
type Input struct {
	Candidates          []types.Signal
	SmallSeedMode       bool
	MaxNewOrdersPerScan int32
	DominantRegime      types.MarketRegime
	Performance         *PerformanceView
}

// Controller is the pure, stateless scoring/selection engine. It holds no
// mutable state and is safe for concurrent use.
type Controller struct{}

// New returns a Controller. There is nothing to configure: every knob in
// the scoring formula is a spec constant, not a tunable.
func New() *Controller {
	return &Controller{}
}

// regimeStress maps a dominant regime to its stress coefficient. Defined
// for all five regimes, including the UNKNOWN fallthrough.
func regimeStress(r types.MarketRegime) float64 {
	switch r {
	case types.RegimeTrendingDown:
		return 1.0
	case types.RegimeHighVolatility:
		return 0.8
	case types.RegimeRanging:
		return 0.45
	case types.RegimeTrendingUp:
		return 0.2
	default:
		return 0.3
	}
}

type scored struct {
	index   int
	signal  types.Signal
	score   float64
}

// resolvedStats picks the strategy-level stats to score a candidate
// against: the performance store's entry if present, else the candidate's
// own embedded stats.
func resolvedStats(s types.Signal, view *PerformanceView) (trades int32, wr, pf, expectancy float64) {
	if view != nil && view.ByStrategy != nil {
		if stats, ok := view.ByStrategy.StrategyStats(s.StrategyName); ok {
			return stats.Trades, stats.WinRate(), stats.ProfitFactor(), stats.Expectancy()
		}
	}
	return s.StrategyTradeCount, s.StrategyWinRate, s.StrategyProfitFactor, 0
}

func strategyModifier(s types.Signal, view *PerformanceView) float64 {
	trades, wr, pf, expectancy := resolvedStats(s, view)
	if trades == 0 {
		return 0
	}

	wrScore := types.Clamp((wr-0.50)/0.20, -1, 1) * 0.10
	pfScore := types.Clamp((pf-1.0)/0.60, -1, 1) * 0.08
	exScore := types.Clamp(expectancy/1500.0, -1, 1) * 0.05

	modifier := wrScore + pfScore + exScore
	if trades >= 10 && (wr < 0.45 || pf < 0.85) {
		modifier -= 0.12
	}
	return modifier
}

func bucketModifier(s types.Signal, view *PerformanceView) float64 {
	if view == nil || view.ByStrategy == nil {
		return 0
	}
	key := types.PerformanceBucketKey{
		StrategyName:    s.StrategyName,
		Regime:          s.MarketRegime,
		LiquidityBucket: types.LiquidityBucket(s.LiquidityScore),
	}
	stats, ok := view.ByStrategy.BucketStats(key)
	if !ok || stats.Trades < 5 {
		return 0
	}
	wrTerm := types.Clamp((stats.WinRate()-0.5)/0.20, -1, 1) * 0.07
	pfTerm := types.Clamp((stats.ProfitFactor()-1)/0.60, -1, 1) * 0.05
	return wrTerm + pfTerm
}

// policyScore computes the full weighted score for one candidate under the
// given cycle context.
func policyScore(s types.Signal, in Input) float64 {
	base := s.Score
	if base <= 0 {
		base = s.Strength
	}

	liqBonus := types.Clamp((s.LiquidityScore-50)/40, -1, 1) * 0.08
	volPenalty := types.Clamp((s.Volatility-2.5)/6, 0, 1) * 0.08
	evBonus := types.Clamp(s.ExpectedValue/0.0035, -1, 1) * 0.10

	stress := regimeStress(in.DominantRegime)
	strengthBonus := (s.Strength - 0.5) * (0.08 + 0.04*stress)

	score := base + liqBonus - volPenalty + evBonus + strengthBonus
	score += strategyModifier(s, in.Performance)
	score += bucketModifier(s, in.Performance)

	if in.SmallSeedMode {
		ssLiqPenalty := types.Clamp((62-s.LiquidityScore)/30, 0, 1) * 0.10
		ssVolPenalty := types.Clamp((s.Volatility-3.0)/5, 0, 1) * 0.08
		score -= ssLiqPenalty + ssVolPenalty
	}

	return score
}

// Select scores and ranks candidates, applying regime-conditioned gates,
// small-seed filters and a capacity cutoff. Select is pure: it performs no
// I/O and carries no state across calls.
func (c *Controller) Select(in Input) types.PolicyDecisionBatch {
	n := len(in.Candidates)
	decisions := make([]types.PolicyDecisionRecord, n)
	survivors := make([]scored, 0, n)

	stress := regimeStress(in.DominantRegime)
	minStrength := 0.36 + 0.10*stress

	// Phase A: per-candidate gates, in input order.
	for i, s := range in.Candidates {
		trades, wr, pf, _ := resolvedStats(s, in.Performance)
		score := policyScore(s, in)

		rec := types.PolicyDecisionRecord{
			Market:               s.Market,
			StrategyName:         s.StrategyName,
			BaseScore:            scoreBase(s),
			PolicyScore:          score,
			Strength:             s.Strength,
			ExpectedValue:        s.ExpectedValue,
			LiquidityScore:       s.LiquidityScore,
			Volatility:           s.Volatility,
			StrategyTrades:       trades,
			StrategyWinRate:      wr,
			StrategyProfitFactor: pf,
		}

		if s.Strength < minStrength {
			rec.Selected = false
			rec.Reason = types.ReasonDroppedLowStrength
			decisions[i] = rec
			continue
		}

		if in.SmallSeedMode && trades >= 10 && (wr < 0.50 || pf < 0.90) {
			rec.Selected = false
			rec.Reason = types.ReasonDroppedSmallSeedQuality
			decisions[i] = rec
			continue
		}

		decisions[i] = rec
		survivors = append(survivors, scored{index: i, signal: s, score: score})
	}

	// Phase B: stable sort descending by (policy_score, strength, score),
	// the original index breaking any remaining tie to keep the sort
	// deterministic regardless of input order quirks.
	sort.SliceStable(survivors, func(i, j int) bool {
		a, b := survivors[i], survivors[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.signal.Strength != b.signal.Strength {
			return a.signal.Strength > b.signal.Strength
		}
		if a.signal.Score != b.signal.Score {
			return a.signal.Score > b.signal.Score
		}
		return a.index < b.index
	})

	// Phase C: post-sort small-seed liquidity/volatility filter.
	filtered := survivors[:0:0]
	for _, sv := range survivors {
		if in.SmallSeedMode && (sv.signal.LiquidityScore < 45 || sv.signal.Volatility > 8) {
			decisions[sv.index].Selected = false
			decisions[sv.index].Reason = types.ReasonDroppedSmallSeedLiqVol
			continue
		}
		filtered = append(filtered, sv)
	}

	// Phase D: capacity cutoff.
	capacity := in.MaxNewOrdersPerScan
	if capacity < 1 {
		capacity = 1
	}

	selected := make([]types.Signal, 0, capacity)
	var droppedByPolicy int32
	for i := range decisions {
		if decisions[i].Reason != "" && decisions[i].Reason != types.ReasonSelected {
			droppedByPolicy++
		}
	}

	for rank, sv := range filtered {
		if int32(rank) < capacity {
			decisions[sv.index].Selected = true
			decisions[sv.index].Reason = types.ReasonSelected
			selected = append(selected, sv.signal)
		} else {
			decisions[sv.index].Selected = false
			decisions[sv.index].Reason = types.ReasonDroppedCapacity
			droppedByPolicy++
		}
	}

	return types.PolicyDecisionBatch{
		SelectedCandidates: selected,
		DroppedByPolicy:    droppedByPolicy,
		Decisions:          decisions,
	}
}

func scoreBase(s types.Signal) float64 {
	if s.Score > 0 {
		return s.Score
	}
	return s.Strength
}
