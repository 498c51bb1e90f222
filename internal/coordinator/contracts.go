// Package coordinator wires the policy, risk and execution planes into one
// trading cycle and serializes the resulting state transitions into the
// event journal.
package coordinator

import "github.com/kestrel-quant/decisioncore/pkg/types"

// IPolicyLearningPlane is the coordinator's contract with whatever selects
// and ranks candidate signals for one cycle.
type IPolicyLearningPlane interface {
	SelectCandidates(candidates []types.Signal, context types.PolicyContext) types.PolicyDecisionBatch
}

// IRiskCompliancePlane is the coordinator's contract with whatever
// pre-trade-validates entries and exits.
type IRiskCompliancePlane interface {
	ValidateEntry(request types.ExecutionRequest, signal types.Signal) types.PreTradeCheck
	ValidateExit(market string, position types.Position, exitPrice float64) types.PreTradeCheck
}

// IExecutionPlane is the coordinator's contract with whatever submits and
// tracks orders.
type IExecutionPlane interface {
	Submit(request types.ExecutionRequest) bool
	Cancel(orderID string) bool
	Poll()
	DrainUpdates() []types.ExecutionUpdate
}
