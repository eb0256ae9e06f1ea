package orders

import (
	"time"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
)

// Change is what a store must persist after Order.Apply succeeded.
type Change struct {
	From    Status
	To      Status
	Restock bool
}

// Apply moves the order to status `to`, appending exactly one history entry
// (carrying note) and running the status side effects. The order is left
// untouched when the transition is not allowed.
func (o *Order) Apply(to Status, note string, at time.Time) (Change, error) {
	if !to.Valid() {
		return Change{}, apperr.Validation("validation failed", "status is not a known order status")
	}
	if !CanTransition(o.Status, to) {
		return Change{}, apperr.Business("cannot move order from %s to %s", o.Status, to)
	}
	ch := Change{From: o.Status, To: to}

	switch to {
	case StatusCancelled:
		o.CancelledAt = &at
		ch.Restock = true
	case StatusDelivered:
		o.DeliveredAt = &at
		o.PaymentInfo.Status = PaymentCompleted
	case StatusReturned:
		if o.PaymentInfo.Status == PaymentCompleted {
			o.PaymentInfo.Status = PaymentRefunded
		}
	}

	o.Status = to
	o.StatusHistory = append(o.StatusHistory, HistoryEntry{Status: to, Note: note, At: at})
	o.UpdatedAt = at
	return ch, nil
}
