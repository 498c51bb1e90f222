package riskplane

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kestrel-quant/decisioncore/pkg/types"
)

func testConfig() Config {
	return Config{
		MaxDailyLoss:         decimal.NewFromInt(500),
		MaxConsecutiveLosses: 3,
		CooldownPeriod:       time.Minute,
		MaxSymbolExposure:    decimal.NewFromFloat(1.0),
		MaxOrderSize:         decimal.NewFromFloat(10),
		MinOrderSize:         decimal.NewFromFloat(0.01),
		RiskPerTrade:         decimal.NewFromFloat(0.02),
	}
}

func TestValidateEntryAllowsWithinLimits(t *testing.T) {
	m := NewManager(nil, testConfig())
	check := m.ValidateEntry(types.ExecutionRequest{Market: "BTC-USD", Quantity: 0.5}, types.Signal{})
	if !check.Allowed {
		t.Errorf("expected entry within limits to be allowed, got reason %q", check.Reason)
	}
}

func TestValidateEntryRejectsBelowMinimum(t *testing.T) {
	m := NewManager(nil, testConfig())
	check := m.ValidateEntry(types.ExecutionRequest{Market: "BTC-USD", Quantity: 0.001}, types.Signal{})
	if check.Allowed || check.Reason != "order_below_minimum" {
		t.Errorf("check = %+v, want rejected with order_below_minimum", check)
	}
}

func TestValidateEntryRejectsAboveMaximum(t *testing.T) {
	m := NewManager(nil, testConfig())
	check := m.ValidateEntry(types.ExecutionRequest{Market: "BTC-USD", Quantity: 20}, types.Signal{})
	if check.Allowed || check.Reason != "order_above_maximum" {
		t.Errorf("check = %+v, want rejected with order_above_maximum", check)
	}
}

func TestValidateEntryTripsKillSwitchAfterConsecutiveLosses(t *testing.T) {
	m := NewManager(nil, testConfig())
	m.RecordFill("BTC-USD", 0.1, -10)
	m.RecordFill("BTC-USD", 0.1, -10)
	m.RecordFill("BTC-USD", 0.1, -10)

	check := m.ValidateEntry(types.ExecutionRequest{Market: "ETH-USD", Quantity: 0.1}, types.Signal{})
	if check.Allowed || check.Reason != "max_consecutive_losses" {
		t.Errorf("check = %+v, want rejected with max_consecutive_losses after 3 straight losses", check)
	}

	// Once tripped, the cooldown itself should also reject the next check.
	again := m.ValidateEntry(types.ExecutionRequest{Market: "ETH-USD", Quantity: 0.1}, types.Signal{})
	if again.Allowed || again.Reason != "kill_switch_cooldown" {
		t.Errorf("check = %+v, want rejected with kill_switch_cooldown once the switch has tripped", again)
	}
}

func TestRecordFillResetsConsecutiveLossesOnWin(t *testing.T) {
	m := NewManager(nil, testConfig())
	m.RecordFill("BTC-USD", 0.1, -10)
	m.RecordFill("BTC-USD", 0.1, -10)
	m.RecordFill("BTC-USD", 0.1, 5)

	check := m.ValidateEntry(types.ExecutionRequest{Market: "BTC-USD", Quantity: 0.1}, types.Signal{})
	if !check.Allowed {
		t.Errorf("a win should reset the consecutive-loss counter, got reason %q", check.Reason)
	}
}

func TestValidateExitAlwaysAllowed(t *testing.T) {
	m := NewManager(nil, testConfig())
	check := m.ValidateExit("BTC-USD", types.Position{}, 100)
	if !check.Allowed {
		t.Error("ValidateExit should always allow")
	}
}

func TestCalculatePositionSize(t *testing.T) {
	m := NewManager(nil, testConfig())
	size := m.CalculatePositionSize(10000, 100, 95)
	// riskAmount = 10000 * 0.02 = 200, perUnitRisk = 5, size = 40
	if size != 40 {
		t.Errorf("CalculatePositionSize = %v, want 40", size)
	}
	if got := m.CalculatePositionSize(10000, 100, 100); got != 0 {
		t.Errorf("CalculatePositionSize with zero stop distance = %v, want 0", got)
	}
}
