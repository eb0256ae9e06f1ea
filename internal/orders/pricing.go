package orders

import (
	"fmt"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/ariefcatur/evn-storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

var (
	TaxRate               = decimal.RequireFromString("0.18") // flat GST
	FreeShippingThreshold = decimal.NewFromInt(999)
	ShippingFee           = decimal.NewFromInt(99)
)

// Price derives every pricing field from the subtotal. It runs exactly once,
// when the order is created.
func Price(subtotal decimal.Decimal) Pricing {
	tax := subtotal.Mul(TaxRate).Round(0)
	shipping := ShippingFee
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	discount := decimal.Zero
	return Pricing{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(tax).Add(shipping).Sub(discount),
	}
}

// Build validates every requested line against the live products and returns
// the snapshot items and pricing. It does not write anything; a single
// failing line fails the whole order.
func Build(lines []Line, products map[string]catalog.Product) ([]Item, Pricing, error) {
	if len(lines) == 0 {
		return nil, Pricing{}, apperr.Business("cart is empty")
	}
	// jumlah per (produk, size) digabung dulu, dua baris beda warna tetap
	// makan stok size yang sama
	need := map[stockKey]int{}
	for _, l := range lines {
		need[stockKey{l.ProductID, l.Size}] += l.Quantity
	}

	items := make([]Item, 0, len(lines))
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, Pricing{}, apperr.Validation("validation failed", fmt.Sprintf("quantity for %s must be >= 1", l.ProductID))
		}
		p, ok := products[l.ProductID]
		if !ok || !p.IsActive {
			name := l.Name
			if name == "" {
				name = l.ProductID
			}
			return nil, Pricing{}, apperr.Business("product %s is no longer available", name)
		}
		stock, ok := p.StockFor(l.Size)
		if !ok {
			return nil, Pricing{}, apperr.Business("size %s is not available for %s", l.Size, p.Name)
		}
		if len(p.Colors) > 0 && !p.HasColor(l.Color) {
			return nil, Pricing{}, apperr.Business("color %q is not available for %s", l.Color, p.Name)
		}
		if stock < need[stockKey{l.ProductID, l.Size}] {
			return nil, Pricing{}, apperr.Business("insufficient stock for %s (size %s): %d available", p.Name, l.Size, stock)
		}
		it := Item{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.EffectivePrice(),
			Quantity:  l.Quantity,
			Size:      l.Size,
			Color:     l.Color,
			Image:     p.FirstImage(),
		}
		subtotal = subtotal.Add(it.LineTotal())
		items = append(items, it)
	}
	return items, Price(subtotal), nil
}

type stockKey struct {
	productID string
	size      catalog.Size
}

// StockMoves sums quantities per product and size, the unit the stock
// table is keyed by.
func StockMoves(items []Item) []StockMove {
	idx := map[stockKey]int{}
	var out []StockMove
	for _, it := range items {
		k := stockKey{it.ProductID, it.Size}
		if i, ok := idx[k]; ok {
			out[i].Qty += it.Quantity
			continue
		}
		idx[k] = len(out)
		out = append(out, StockMove{ProductID: it.ProductID, Size: it.Size, Qty: it.Quantity})
	}
	return out
}

type StockMove struct {
	ProductID string
	Size      catalog.Size
	Qty       int
}
