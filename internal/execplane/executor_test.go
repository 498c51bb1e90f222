package execplane

import (
	"testing"

	"github.com/kestrel-quant/decisioncore/pkg/types"
)

func fixedClock() int64 { return 1_700_000_000_000 }

func TestSubmitRejectsMalformedRequest(t *testing.T) {
	e := New(nil, fixedClock)
	if e.Submit(types.ExecutionRequest{Market: "", Quantity: 1}) {
		t.Error("Submit should reject an empty market")
	}
	if e.Submit(types.ExecutionRequest{Market: "BTC-USD", Quantity: 0}) {
		t.Error("Submit should reject a non-positive quantity")
	}
}

func TestSubmitPollDrainRoundTrip(t *testing.T) {
	e := New(nil, fixedClock)
	if !e.Submit(types.ExecutionRequest{Market: "BTC-USD", Quantity: 1, Price: 100}) {
		t.Fatal("Submit failed for a well-formed request")
	}

	if updates := e.DrainUpdates(); updates != nil {
		t.Errorf("DrainUpdates before Poll = %v, want nil", updates)
	}

	e.Poll()
	updates := e.DrainUpdates()
	if len(updates) != 1 {
		t.Fatalf("len(updates) = %d, want 1", len(updates))
	}
	if updates[0].Status != "filled" || updates[0].FilledQty != 1 || updates[0].AvgFillPrice != 100 {
		t.Errorf("update = %+v, want a fill at qty=1 price=100", updates[0])
	}

	if drained := e.DrainUpdates(); drained != nil {
		t.Errorf("second DrainUpdates = %v, want nil (queue cleared)", drained)
	}
}

func TestDrainUpdatesReturnsFIFOOrder(t *testing.T) {
	e := New(nil, fixedClock)
	e.Submit(types.ExecutionRequest{Market: "A", Quantity: 1, Price: 1})
	e.Submit(types.ExecutionRequest{Market: "B", Quantity: 1, Price: 2})
	e.Poll()

	updates := e.DrainUpdates()
	if len(updates) != 2 || updates[0].Market != "A" || updates[1].Market != "B" {
		t.Errorf("updates = %+v, want A before B", updates)
	}
}

func TestCancelRemovesPendingOrder(t *testing.T) {
	e := New(nil, fixedClock)
	e.Submit(types.ExecutionRequest{Market: "A", Quantity: 1, Price: 1, ClientOrderID: "order-1"})

	if !e.Cancel("order-1") {
		t.Fatal("Cancel should succeed for a pending order")
	}
	if e.Cancel("order-1") {
		t.Error("Cancel should fail the second time for an already-canceled order")
	}

	e.Poll()
	if updates := e.DrainUpdates(); updates != nil {
		t.Errorf("a canceled order should not produce a fill, got %v", updates)
	}
}
