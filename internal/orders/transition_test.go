package orders

import (
	"strings"
	"testing"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
)

func pendingOrder() Order {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return Order{
		Status:        StatusPending,
		PaymentInfo:   PaymentInfo{Method: PaymentCard, Status: PaymentPending},
		StatusHistory: []HistoryEntry{{Status: StatusPending, At: at}},
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

func TestApplySideEffects(t *testing.T) {
	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	o := pendingOrder()
	ch, err := o.Apply(StatusCancelled, "oops", at)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !ch.Restock || ch.From != StatusPending || o.CancelledAt == nil || !o.UpdatedAt.Equal(at) {
		t.Fatalf("cancel side effects: %+v %+v", ch, o)
	}

	o = pendingOrder()
	for _, to := range []Status{StatusProcessing, StatusDelivered} {
		if _, err := o.Apply(to, "", at); err != nil {
			t.Fatalf("%s: %v", to, err)
		}
	}
	if o.PaymentInfo.Status != PaymentCompleted || o.DeliveredAt == nil {
		t.Fatalf("delivered side effects: %+v", o)
	}
	ch, err = o.Apply(StatusReturned, "", at)
	if err != nil || ch.Restock {
		t.Fatalf("return: %+v %v", ch, err)
	}
	if o.PaymentInfo.Status != PaymentRefunded {
		t.Fatalf("payment = %s, want refunded", o.PaymentInfo.Status)
	}
	if len(o.StatusHistory) != 4 {
		t.Fatalf("one history entry per transition, got %d", len(o.StatusHistory))
	}
}

func TestApplyReturnKeepsUnpaidPayment(t *testing.T) {
	o := pendingOrder()
	_, _ = o.Apply(StatusShipped, "", time.Now())
	if _, err := o.Apply(StatusReturned, "", time.Now()); err != nil {
		t.Fatalf("return: %v", err)
	}
	if o.PaymentInfo.Status != PaymentPending {
		t.Fatalf("payment = %s, want pending", o.PaymentInfo.Status)
	}
}

func TestApplyRejectedLeavesOrderUntouched(t *testing.T) {
	cases := []struct {
		from, to Status
		kind     apperr.Kind
	}{
		{StatusPending, StatusDelivered, apperr.KindBusiness},
		{StatusShipped, StatusCancelled, apperr.KindBusiness},
		{StatusCancelled, StatusPending, apperr.KindBusiness},
		{StatusReturned, StatusDelivered, apperr.KindBusiness},
		{StatusPending, "lost", apperr.KindValidation},
	}
	for _, tc := range cases {
		o := pendingOrder()
		o.Status = tc.from
		before := len(o.StatusHistory)
		_, err := o.Apply(tc.to, "", time.Now())
		if !apperr.Is(err, tc.kind) {
			t.Errorf("%s -> %s: got %v", tc.from, tc.to, err)
		}
		if o.Status != tc.from || len(o.StatusHistory) != before || o.CancelledAt != nil || o.DeliveredAt != nil {
			t.Errorf("%s -> %s mutated the order: %+v", tc.from, tc.to, o)
		}
	}
}

func TestStatusRules(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed} {
		if !s.Cancellable() {
			t.Errorf("%s should be cancellable", s)
		}
	}
	for _, s := range []Status{StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusReturned} {
		if s.Cancellable() {
			t.Errorf("%s should not be cancellable", s)
		}
	}
	if !StatusCancelled.Terminal() || !StatusReturned.Terminal() || StatusDelivered.Terminal() {
		t.Error("terminal set should be {cancelled, returned}")
	}
}

func TestFormatOrderNumber(t *testing.T) {
	at := time.UnixMilli(1767225600123)
	if got := FormatOrderNumber(at, 7); got != "EVN-1767225600123-0007" {
		t.Fatalf("got %q", got)
	}
	if got := FormatOrderNumber(at, 12345); !strings.HasSuffix(got, "-2345") {
		t.Fatalf("sequence should wrap at 10000, got %q", got)
	}
}
