// Package types holds the value types shared across the policy, regime,
// performance and journal planes.
package types

// MarketRegime is the closed set of coarse market states the regime
// detector can classify a candle window into.
type MarketRegime string

const (
	RegimeUnknown       MarketRegime = "UNKNOWN"
	RegimeTrendingUp    MarketRegime = "TRENDING_UP"
	RegimeTrendingDown  MarketRegime = "TRENDING_DOWN"
	RegimeRanging       MarketRegime = "RANGING"
	RegimeHighVolatility MarketRegime = "HIGH_VOLATILITY"
)

// SignalKind is the action a Signal recommends.
type SignalKind string

const (
	SignalNone        SignalKind = "NONE"
	SignalStrongBuy   SignalKind = "STRONG_BUY"
	SignalBuy         SignalKind = "BUY"
	SignalHold        SignalKind = "HOLD"
	SignalSell        SignalKind = "SELL"
	SignalStrongSell  SignalKind = "STRONG_SELL"
)

// DecisionReason explains why the policy controller selected or dropped a
// candidate. It is the one user-visible audit trail for policy outcomes.
type DecisionReason string

const (
	ReasonSelected                DecisionReason = "selected"
	ReasonDroppedLowStrength      DecisionReason = "dropped_low_strength"
	ReasonDroppedSmallSeedQuality DecisionReason = "dropped_small_seed_quality"
	ReasonDroppedSmallSeedLiqVol  DecisionReason = "dropped_small_seed_liqvol"
	ReasonDroppedCapacity         DecisionReason = "dropped_capacity"
)

// JournalEventType enumerates the state-transition events the journal can
// record. Unknown tokens read back from disk map to OrderUpdated.
type JournalEventType string

const (
	EventOrderSubmitted  JournalEventType = "ORDER_SUBMITTED"
	EventOrderUpdated    JournalEventType = "ORDER_UPDATED"
	EventFillApplied     JournalEventType = "FILL_APPLIED"
	EventPositionOpened  JournalEventType = "POSITION_OPENED"
	EventPositionReduced JournalEventType = "POSITION_REDUCED"
	EventPositionClosed  JournalEventType = "POSITION_CLOSED"
	EventPolicyChanged   JournalEventType = "POLICY_CHANGED"
)

// Candle is a single OHLCV bar, ordered ascending by timestamp, immutable
// once constructed.
type Candle struct {
	TimestampMs int64   `json:"timestamp_ms"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
}

// RegimeAnalysis is the output of the regime detector for one window of
// candles.
type RegimeAnalysis struct {
	Regime      MarketRegime `json:"regime"`
	ADX         float64      `json:"adx"`
	ATRPct      float64      `json:"atr_pct"`
	TrendScore  float64      `json:"trend_score"`
	Description string       `json:"description"`
}

// Signal is the core's input unit: a candidate trade the policy controller
// weighs against history and regime before admitting it for execution.
type Signal struct {
	Kind                 SignalKind   `json:"kind"`
	Market               string       `json:"market"`
	StrategyName         string       `json:"strategy_name"`
	Strength             float64      `json:"strength"`
	EntryPrice           float64      `json:"entry_price"`
	StopLoss             float64      `json:"stop_loss"`
	TakeProfit           float64      `json:"take_profit"`
	PositionSizeRatio    float64      `json:"position_size_ratio"`
	Reason               string       `json:"reason"`
	TimestampMs          int64        `json:"timestamp_ms"`
	Score                float64      `json:"score"`
	LiquidityScore       float64      `json:"liquidity_score"`
	Volatility           float64      `json:"volatility"`
	ExpectedValue        float64      `json:"expected_value"`
	MarketRegime         MarketRegime `json:"market_regime"`
	StrategyTradeCount   int32        `json:"strategy_trade_count"`
	StrategyWinRate      float64      `json:"strategy_win_rate"`
	StrategyProfitFactor float64      `json:"strategy_profit_factor"`
}

// PolicyContext carries the cycle-scoped configuration the controller needs
// beyond the candidate list itself.
type PolicyContext struct {
	SmallSeedMode        bool         `json:"small_seed_mode"`
	MaxNewOrdersPerScan   int32        `json:"max_new_orders_per_scan"`
	DominantRegime        MarketRegime `json:"dominant_regime"`
}

// PolicyDecisionRecord is the audit row emitted for every candidate the
// controller considers, selected or not.
type PolicyDecisionRecord struct {
	Market               string         `json:"market"`
	StrategyName          string         `json:"strategy_name"`
	Selected              bool           `json:"selected"`
	Reason                DecisionReason `json:"reason"`
	BaseScore             float64        `json:"base_score"`
	PolicyScore           float64        `json:"policy_score"`
	Strength              float64        `json:"strength"`
	ExpectedValue         float64        `json:"expected_value"`
	LiquidityScore        float64        `json:"liquidity_score"`
	Volatility            float64        `json:"volatility"`
	StrategyTrades        int32          `json:"strategy_trades"`
	StrategyWinRate       float64        `json:"strategy_win_rate"`
	StrategyProfitFactor  float64        `json:"strategy_profit_factor"`
}

// PolicyDecisionBatch is the controller's full output for one cycle.
type PolicyDecisionBatch struct {
	SelectedCandidates []Signal               `json:"selected_candidates"`
	DroppedByPolicy    int32                  `json:"dropped_by_policy"`
	Decisions          []PolicyDecisionRecord `json:"decisions"`
}

// TradeHistory is one realized trade outcome fed into the performance store.
type TradeHistory struct {
	StrategyName   string       `json:"strategy_name"`
	MarketRegime   MarketRegime `json:"market_regime"`
	LiquidityScore float64      `json:"liquidity_score"`
	ProfitLoss     float64      `json:"profit_loss"`
}

// StrategyPerformanceStats are the accumulated counters for one strategy (or
// one strategy/regime/liquidity-bucket combination).
type StrategyPerformanceStats struct {
	Trades       int32   `json:"trades"`
	Wins         int32   `json:"wins"`
	GrossProfit  float64 `json:"gross_profit"`
	GrossLossAbs float64 `json:"gross_loss_abs"`
	NetProfit    float64 `json:"net_profit"`
}

// WinRate is wins/trades, 0 if no trades have been recorded.
func (s StrategyPerformanceStats) WinRate() float64 {
	if s.Trades == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Trades)
}

// Expectancy is net_profit/trades, 0 if no trades have been recorded.
func (s StrategyPerformanceStats) Expectancy() float64 {
	if s.Trades == 0 {
		return 0
	}
	return s.NetProfit / float64(s.Trades)
}

// ProfitFactor is gross_profit/gross_loss_abs, 0 if losses are negligible.
func (s StrategyPerformanceStats) ProfitFactor() float64 {
	if s.GrossLossAbs > 1e-12 {
		return s.GrossProfit / s.GrossLossAbs
	}
	return 0
}

// PerformanceBucketKey is the composite key for the bucketed performance
// table: strategy, regime, and liquidity bucket.
type PerformanceBucketKey struct {
	StrategyName    string
	Regime          MarketRegime
	LiquidityBucket int32
}

// LiquidityBucket maps a liquidity score into one of four buckets. It is
// the single shared definition the performance store and the policy
// controller both call, so the mapping can never drift between them.
func LiquidityBucket(score float64) int32 {
	switch {
	case score < 40:
		return 0
	case score < 60:
		return 1
	case score < 80:
		return 2
	default:
		return 3
	}
}

// JournalEvent is one durable, append-only journal record.
type JournalEvent struct {
	Seq      uint64           `json:"seq"`
	TsMs     int64            `json:"ts_ms"`
	Type     JournalEventType `json:"type"`
	Market   string           `json:"market"`
	EntityID string           `json:"entity_id"`
	Payload  map[string]any   `json:"payload"`
}

// ExecutionRequest is what the coordinator hands the execution plane for a
// selected candidate.
type ExecutionRequest struct {
	Market         string  `json:"market"`
	Side           string  `json:"side"`
	Quantity       float64 `json:"quantity"`
	Price          float64 `json:"price"`
	StrategyName   string  `json:"strategy_name"`
	ClientOrderID  string  `json:"client_order_id"`
}

// ExecutionUpdate is what the execution plane reports back as an order's
// lifecycle progresses.
type ExecutionUpdate struct {
	OrderID      string  `json:"order_id"`
	Market       string  `json:"market"`
	Status       string  `json:"status"`
	FilledQty    float64 `json:"filled_qty"`
	AvgFillPrice float64 `json:"avg_fill_price"`
	TsMs         int64   `json:"ts_ms"`
}

// PreTradeCheck is the risk plane's verdict on a proposed entry or exit.
type PreTradeCheck struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Position mirrors the minimal state the risk plane needs to validate an
// exit request; it is not the execution plane's full position bookkeeping.
type Position struct {
	Market     string  `json:"market"`
	Side       string  `json:"side"`
	Quantity   float64 `json:"quantity"`
	EntryPrice float64 `json:"entry_price"`
}

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
