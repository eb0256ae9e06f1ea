package cart

import (
	"time"

	"github.com/ariefcatur/evn-storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

// Item snapshots name, price and image at add time; later product edits do
// not reach into existing carts.
type Item struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"salePrice,omitempty"`
	Image     string           `json:"image"`
	Size      catalog.Size     `json:"size"`
	Color     string           `json:"color,omitempty"`
	Quantity  int              `json:"quantity"`
}

func (it Item) UnitPrice() decimal.Decimal {
	if it.SalePrice != nil {
		return *it.SalePrice
	}
	return it.Price
}

func (it Item) LineTotal() decimal.Decimal {
	return it.UnitPrice().Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func (it Item) sameVariant(productID string, size catalog.Size, color string) bool {
	return it.ProductID == productID && it.Size == size && it.Color == color
}

// Cart is a per-user singleton. An empty cart stays persisted as a shell.
type Cart struct {
	UserID     string          `json:"userId"`
	Items      []Item          `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Recalculate refreshes the derived totals; run it before every save.
func (c *Cart) Recalculate() {
	if c.Items == nil {
		c.Items = []Item{}
	}
	n := 0
	total := decimal.Zero
	for _, it := range c.Items {
		n += it.Quantity
		total = total.Add(it.LineTotal())
	}
	c.TotalItems = n
	c.TotalPrice = total
}

func (c Cart) Empty() bool { return len(c.Items) == 0 }

type AddInput struct {
	ProductID string       `json:"productId" validate:"required,uuid"`
	Size      catalog.Size `json:"size" validate:"required"`
	Color     string       `json:"color"`
	Quantity  int          `json:"quantity" validate:"required,gte=1"`
}
