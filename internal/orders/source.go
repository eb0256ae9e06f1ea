package orders

import (
	"github.com/ariefcatur/evn-storefront/internal/catalog"
)

// Line is one requested product/size/color/quantity before validation.
type Line struct {
	ProductID string       `json:"productId" validate:"required,uuid"`
	Size      catalog.Size `json:"size" validate:"required"`
	Color     string       `json:"color"`
	Quantity  int          `json:"quantity" validate:"required,gte=1"`
	Name      string       `json:"-"`
}

// Source is where an order's lines come from: the caller's cart or an
// explicit "buy now" list.
type Source interface {
	Kind() SourceKind
}

type CartSource struct{ UserID string }

type ItemsSource struct{ Lines []Line }

func (CartSource) Kind() SourceKind  { return SourceCart }
func (ItemsSource) Kind() SourceKind { return SourceItems }

// SourceFor picks explicit items when present, the cart otherwise.
func SourceFor(userID string, lines []Line) Source {
	if len(lines) > 0 {
		return ItemsSource{Lines: lines}
	}
	return CartSource{UserID: userID}
}
