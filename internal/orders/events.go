package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// Customer carries what the notifier needs to address an email without
// reading the users table.
type Customer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type OrderPlacedPayload struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      string          `json:"user_id"`
	Customer    Customer        `json:"customer"`
	Items       []Item          `json:"items"`
	Pricing     Pricing         `json:"pricing"`
	Payment     PaymentMethod   `json:"payment_method"`
	Total       decimal.Decimal `json:"total"`
}

type OrderStatusChangedPayload struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	Customer    Customer  `json:"customer"`
	From        Status    `json:"from"`
	To          Status    `json:"to"`
	Note        string    `json:"note,omitempty"`
	Tracking    *Tracking `json:"tracking,omitempty"`
}
