// Package execplane is a reference IExecutionPlane implementation: an
// in-memory paper-trading executor exercising the interface the
// coordinator depends on. It is not part of the deterministic core.
package execplane

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kestrel-quant/decisioncore/pkg/types"
)

type pendingOrder struct {
	orderID string
	request types.ExecutionRequest
}

// Executor is an in-memory paper-trading execution plane. Submit accepts a
// request and assigns it a UUID order ID; Poll simulates an immediate fill
// for every order submitted since the last Poll; DrainUpdates returns
// updates in FIFO enqueue order.
type Executor struct {
	logger *zap.Logger

	mu       sync.Mutex
	pending  []pendingOrder
	updates  []types.ExecutionUpdate
	canceled map[string]bool
	nowMs    func() int64
}

// New creates an Executor. nowMs supplies the timestamp stamped on
// ExecutionUpdates; tests should inject a deterministic clock.
func New(logger *zap.Logger, nowMs func() int64) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if nowMs == nil {
		nowMs = func() int64 { return 0 }
	}
	return &Executor{
		logger:   logger.Named("execplane"),
		canceled: make(map[string]bool),
		nowMs:    nowMs,
	}
}

// Submit enqueues request for fill simulation on the next Poll and always
// succeeds for a well-formed request.
func (e *Executor) Submit(request types.ExecutionRequest) bool {
	if request.Market == "" || request.Quantity <= 0 {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	orderID := request.ClientOrderID
	if orderID == "" {
		orderID = uuid.NewString()
	}
	e.pending = append(e.pending, pendingOrder{orderID: orderID, request: request})
	return true
}

// Cancel marks orderID as canceled if it is still pending.
func (e *Executor) Cancel(orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, p := range e.pending {
		if p.orderID == orderID {
			e.pending = append(e.pending[:i], e.pending[i+1:]...)
			e.canceled[orderID] = true
			return true
		}
	}
	return false
}

// Poll simulates an immediate fill at the requested price for every order
// still pending, appending an ExecutionUpdate for each.
func (e *Executor) Poll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range e.pending {
		e.updates = append(e.updates, types.ExecutionUpdate{
			OrderID:      p.orderID,
			Market:       p.request.Market,
			Status:       "filled",
			FilledQty:    p.request.Quantity,
			AvgFillPrice: p.request.Price,
			TsMs:         e.nowMs(),
		})
	}
	e.pending = e.pending[:0]
}

// DrainUpdates returns and clears all updates queued since the last call,
// in FIFO enqueue order.
func (e *Executor) DrainUpdates() []types.ExecutionUpdate {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := e.updates
	e.updates = nil
	return out
}
