package orders

import (
	"time"

	"github.com/ariefcatur/evn-storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

// Item is the immutable snapshot of a product line at order time. Orders
// never join back to live products.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"` // effective unit price charged
	Quantity  int             `json:"quantity"`
	Size      catalog.Size    `json:"size"`
	Color     string          `json:"color,omitempty"`
	Image     string          `json:"image,omitempty"`
}

func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type ShippingAddress struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Street    string `json:"street" validate:"required"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
	Country   string `json:"country" validate:"required"`
}

type PaymentInfo struct {
	Method PaymentMethod `json:"method"`
	Status PaymentStatus `json:"status"`
}

type Pricing struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

type HistoryEntry struct {
	Status Status    `json:"status"`
	Note   string    `json:"note,omitempty"`
	At     time.Time `json:"timestamp"`
}

type Tracking struct {
	Carrier string `json:"carrier,omitempty"`
	Number  string `json:"number,omitempty"`
}

type SourceKind string

const (
	SourceCart  SourceKind = "cart"
	SourceItems SourceKind = "items"
)

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          string          `json:"userId"`
	Items           []Item          `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentInfo     PaymentInfo     `json:"paymentInfo"`
	Status          Status          `json:"orderStatus"`
	StatusHistory   []HistoryEntry  `json:"statusHistory"`
	Pricing         Pricing         `json:"pricing"`
	Tracking        *Tracking       `json:"tracking,omitempty"`
	Source          SourceKind      `json:"source"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type ListQuery struct {
	UserID string
	Status Status
	Search string // order number or customer email
	Page   int
	Limit  int
}

type Page struct {
	Orders     []Order `json:"orders"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}
