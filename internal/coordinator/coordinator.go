package coordinator

import (
	"go.uber.org/zap"

	"github.com/kestrel-quant/decisioncore/internal/eventbus"
	"github.com/kestrel-quant/decisioncore/internal/journal"
	"github.com/kestrel-quant/decisioncore/pkg/types"
)

// Coordinator is the thin fan-out over the policy, risk and execution
// planes for one trading cycle: select -> validate -> submit -> drain ->
// journal. Each plane is optional; nil planes fall back to the documented
// pass-through behavior instead of erroring.
type Coordinator struct {
	logger *zap.Logger

	policy    IPolicyLearningPlane
	risk      IRiskCompliancePlane
	execution IExecutionPlane

	journal *journal.Journal
	bus     *eventbus.Bus
}

// New creates a Coordinator. journal must not be nil; policy/risk/execution
// and bus may be nil.
func New(logger *zap.Logger, j *journal.Journal, policyPlane IPolicyLearningPlane, riskPlane IRiskCompliancePlane, executionPlane IExecutionPlane, bus *eventbus.Bus) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		logger:    logger.Named("coordinator"),
		policy:    policyPlane,
		risk:      riskPlane,
		execution: executionPlane,
		journal:   j,
		bus:       bus,
	}
}

// SelectPolicyCandidates delegates to the policy plane. With no policy
// plane attached, every candidate passes through selected, with no
// decision records produced.
func (c *Coordinator) SelectPolicyCandidates(candidates []types.Signal, ctx types.PolicyContext) types.PolicyDecisionBatch {
	if c.policy == nil {
		return types.PolicyDecisionBatch{
			SelectedCandidates: candidates,
			DroppedByPolicy:    0,
			Decisions:          nil,
		}
	}
	return c.policy.SelectCandidates(candidates, ctx)
}

// ValidateEntry delegates to the risk plane. With no risk plane attached,
// entries are always allowed.
func (c *Coordinator) ValidateEntry(request types.ExecutionRequest, signal types.Signal) types.PreTradeCheck {
	if c.risk == nil {
		return types.PreTradeCheck{Allowed: true, Reason: "risk_plane_unset"}
	}
	return c.risk.ValidateEntry(request, signal)
}

// ValidateExit delegates to the risk plane. With no risk plane attached,
// exits are always allowed.
func (c *Coordinator) ValidateExit(market string, position types.Position, exitPrice float64) types.PreTradeCheck {
	if c.risk == nil {
		return types.PreTradeCheck{Allowed: true, Reason: "risk_plane_unset"}
	}
	return c.risk.ValidateExit(market, position, exitPrice)
}

// Submit delegates to the execution plane. With no execution plane
// attached, submission always fails.
func (c *Coordinator) Submit(request types.ExecutionRequest) bool {
	if c.execution == nil {
		return false
	}
	return c.execution.Submit(request)
}

// Cancel delegates to the execution plane. With no execution plane
// attached, cancellation always fails.
func (c *Coordinator) Cancel(orderID string) bool {
	if c.execution == nil {
		return false
	}
	return c.execution.Cancel(orderID)
}

// PollExecution delegates to the execution plane. A no-op if none is
// attached.
func (c *Coordinator) PollExecution() {
	if c.execution == nil {
		return
	}
	c.execution.Poll()
}

// DrainExecutionUpdates delegates to the execution plane, returning its
// updates in FIFO-of-enqueue order. Empty if no execution plane is
// attached.
func (c *Coordinator) DrainExecutionUpdates() []types.ExecutionUpdate {
	if c.execution == nil {
		return nil
	}
	return c.execution.DrainUpdates()
}

// RunCycle executes one full trading cycle: regime classification has
// already happened upstream (the caller builds ctx from it); RunCycle runs
// policy selection over candidates, walks the selected ones through risk
// validation and execution submission, drains any pending execution
// updates, and journals every state transition in the order it is
// emitted.
func (c *Coordinator) RunCycle(candidates []types.Signal, ctx types.PolicyContext) types.PolicyDecisionBatch {
	batch := c.SelectPolicyCandidates(candidates, ctx)

	for _, signal := range batch.SelectedCandidates {
		request := types.ExecutionRequest{
			Market:       signal.Market,
			Side:         sideFromKind(signal.Kind),
			Quantity:     signal.PositionSizeRatio,
			Price:        signal.EntryPrice,
			StrategyName: signal.StrategyName,
		}

		check := c.ValidateEntry(request, signal)
		if !check.Allowed {
			continue
		}

		if !c.Submit(request) {
			continue
		}

		c.appendEvent(types.JournalEvent{
			TsMs:     signal.TimestampMs,
			Type:     types.EventOrderSubmitted,
			Market:   signal.Market,
			EntityID: request.ClientOrderID,
			Payload: map[string]any{
				"strategy_name": signal.StrategyName,
				"price":         signal.EntryPrice,
				"quantity":      signal.PositionSizeRatio,
			},
		})
	}

	c.PollExecution()
	for _, update := range c.DrainExecutionUpdates() {
		c.appendEvent(types.JournalEvent{
			TsMs:     update.TsMs,
			Type:     updateEventType(update),
			Market:   update.Market,
			EntityID: update.OrderID,
			Payload: map[string]any{
				"status":         update.Status,
				"filled_qty":     update.FilledQty,
				"avg_fill_price": update.AvgFillPrice,
			},
		})
	}

	return batch
}

func sideFromKind(kind types.SignalKind) string {
	switch kind {
	case types.SignalStrongBuy, types.SignalBuy:
		return "buy"
	case types.SignalStrongSell, types.SignalSell:
		return "sell"
	default:
		return "hold"
	}
}

func updateEventType(update types.ExecutionUpdate) types.JournalEventType {
	switch update.Status {
	case "filled":
		return types.EventFillApplied
	default:
		return types.EventOrderUpdated
	}
}

// appendEvent journals evt and, on success, fans it out to the event bus
// if one is attached. Journal failures are logged; the cycle proceeds.
func (c *Coordinator) appendEvent(evt types.JournalEvent) {
	if c.journal == nil {
		return
	}
	if !c.journal.Append(evt) {
		c.logger.Warn("journal append failed", zap.String("market", evt.Market), zap.String("type", string(evt.Type)))
		return
	}
	if c.bus != nil {
		c.bus.Publish(evt)
	}
}
