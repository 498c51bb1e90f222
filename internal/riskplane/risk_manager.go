// Package riskplane is a reference IRiskCompliancePlane implementation: a
// concrete risk manager exercising the interface the coordinator depends
// on. It is not part of the deterministic core; the core only knows about
// the interface in internal/coordinator.
package riskplane

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kestrel-quant/decisioncore/pkg/types"
)

// Config configures the kill-switch and exposure limits.
type Config struct {
	MaxDailyLoss         decimal.Decimal
	MaxConsecutiveLosses int
	CooldownPeriod       time.Duration
	MaxSymbolExposure    decimal.Decimal
	MaxOrderSize         decimal.Decimal
	MinOrderSize         decimal.Decimal
	RiskPerTrade         decimal.Decimal
}

// DefaultConfig returns conservative defaults.
func DefaultConfig() Config {
	return Config{
		MaxDailyLoss:         decimal.NewFromInt(500),
		MaxConsecutiveLosses: 5,
		CooldownPeriod:       30 * time.Minute,
		MaxSymbolExposure:    decimal.NewFromFloat(0.2),
		MaxOrderSize:         decimal.NewFromInt(10000),
		MinOrderSize:         decimal.NewFromFloat(0.001),
		RiskPerTrade:         decimal.NewFromFloat(0.02),
	}
}

// Manager tracks daily PnL, consecutive losses and per-symbol exposure, and
// implements coordinator.IRiskCompliancePlane by structural typing.
type Manager struct {
	logger *zap.Logger
	config Config

	mu                sync.Mutex
	dailyPnL          decimal.Decimal
	consecutiveLosses int
	symbolExposure    map[string]decimal.Decimal
	killSwitchUntil   time.Time
}

// NewManager creates a Manager.
func NewManager(logger *zap.Logger, config Config) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		logger:         logger.Named("riskplane"),
		config:         config,
		symbolExposure: make(map[string]decimal.Decimal),
	}
}

// ValidateEntry checks the kill switch and per-symbol exposure before
// allowing a proposed entry.
func (m *Manager) ValidateEntry(request types.ExecutionRequest, signal types.Signal) types.PreTradeCheck {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Now().Before(m.killSwitchUntil) {
		return types.PreTradeCheck{Allowed: false, Reason: "kill_switch_cooldown"}
	}

	if m.dailyPnL.LessThan(m.config.MaxDailyLoss.Neg()) {
		return types.PreTradeCheck{Allowed: false, Reason: "max_daily_loss_exceeded"}
	}

	if m.consecutiveLosses >= m.config.MaxConsecutiveLosses {
		m.killSwitchUntil = time.Now().Add(m.config.CooldownPeriod)
		return types.PreTradeCheck{Allowed: false, Reason: "max_consecutive_losses"}
	}

	qty := decimal.NewFromFloat(request.Quantity)
	if qty.LessThan(m.config.MinOrderSize) {
		return types.PreTradeCheck{Allowed: false, Reason: "order_below_minimum"}
	}
	if qty.GreaterThan(m.config.MaxOrderSize) {
		return types.PreTradeCheck{Allowed: false, Reason: "order_above_maximum"}
	}

	exposure := m.symbolExposure[request.Market].Add(qty)
	if exposure.GreaterThan(m.config.MaxSymbolExposure) {
		return types.PreTradeCheck{Allowed: false, Reason: "symbol_exposure_exceeded"}
	}

	return types.PreTradeCheck{Allowed: true, Reason: ""}
}

// ValidateExit always allows exits; the risk plane never blocks closing a
// position, only opening one.
func (m *Manager) ValidateExit(market string, position types.Position, exitPrice float64) types.PreTradeCheck {
	return types.PreTradeCheck{Allowed: true, Reason: ""}
}

// RecordFill updates daily PnL and the consecutive-loss counter after a
// trade closes, and the per-symbol exposure tracker after an entry.
func (m *Manager) RecordFill(market string, quantity float64, pnl float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.symbolExposure[market] = m.symbolExposure[market].Add(decimal.NewFromFloat(quantity))
	m.dailyPnL = m.dailyPnL.Add(decimal.NewFromFloat(pnl))

	if pnl < 0 {
		m.consecutiveLosses++
	} else if pnl > 0 {
		m.consecutiveLosses = 0
	}
}

// ResetDaily clears the daily PnL counter. Nothing in this repository calls
// it; the caller owns the trading-day boundary.
func (m *Manager) ResetDaily() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyPnL = decimal.Zero
}

// CalculatePositionSize sizes a position as a fraction of equity bounded by
// RiskPerTrade and the distance to the stop loss.
func (m *Manager) CalculatePositionSize(equity, entryPrice, stopLoss float64) float64 {
	if entryPrice == stopLoss {
		return 0
	}
	riskAmount := decimal.NewFromFloat(equity).Mul(m.config.RiskPerTrade)
	perUnitRisk := decimal.NewFromFloat(entryPrice - stopLoss).Abs()
	if perUnitRisk.IsZero() {
		return 0
	}
	size := riskAmount.Div(perUnitRisk)
	sizeF, _ := size.Float64()
	return sizeF
}
