package coordinator

import (
	"github.com/kestrel-quant/decisioncore/internal/performance"
	"github.com/kestrel-quant/decisioncore/internal/policy"
	"github.com/kestrel-quant/decisioncore/pkg/types"
)

// LegacyPolicyAdapter is the glue between the coordinator's
// IPolicyLearningPlane contract and the Adaptive Policy Controller: it
// translates PolicyContext plus a candidate list into a policy.Input,
// attaches the performance store when available, invokes the controller,
// and returns its output unchanged as a PolicyDecisionBatch.
type LegacyPolicyAdapter struct {
	controller  *policy.Controller
	performance *performance.Store
}

// NewLegacyPolicyAdapter wraps controller and an optional performance
// store into an IPolicyLearningPlane. store may be nil, in which case the
// controller falls back to each candidate's embedded strategy stats.
func NewLegacyPolicyAdapter(controller *policy.Controller, store *performance.Store) *LegacyPolicyAdapter {
	return &LegacyPolicyAdapter{controller: controller, performance: store}
}

// SelectCandidates implements IPolicyLearningPlane.
func (a *LegacyPolicyAdapter) SelectCandidates(candidates []types.Signal, ctx types.PolicyContext) types.PolicyDecisionBatch {
	var view *policy.PerformanceView
	if a.performance != nil {
		view = &policy.PerformanceView{ByStrategy: a.performance}
	}

	input := policy.Input{
		Candidates:          candidates,
		SmallSeedMode:       ctx.SmallSeedMode,
		MaxNewOrdersPerScan: ctx.MaxNewOrdersPerScan,
		DominantRegime:      ctx.DominantRegime,
		Performance:         view,
	}

	return a.controller.Select(input)
}
