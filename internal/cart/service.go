package cart

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/ariefcatur/evn-storefront/internal/catalog"
	"github.com/ariefcatur/evn-storefront/internal/validate"
	"github.com/google/uuid"
)

type Store interface {
	// Get returns an empty cart (not an error) when the user has none yet.
	Get(ctx context.Context, userID string) (Cart, error)
	Save(ctx context.Context, c Cart) error
}

type Products interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

type Service struct {
	Store    Store
	Products Products
	Now      func() time.Time
}

func NewService(store Store, products Products) *Service {
	return &Service{Store: store, Products: products, Now: time.Now}
}

func (s *Service) Get(ctx context.Context, userID string) (Cart, error) {
	c, err := s.Store.Get(ctx, userID)
	if err != nil {
		return Cart{}, apperr.Internal("load cart", err)
	}
	c.Recalculate()
	return c, nil
}

func (s *Service) Add(ctx context.Context, userID string, in AddInput) (Cart, error) {
	if msgs := validate.Struct(in); msgs != nil {
		return Cart{}, apperr.Validation("validation failed", msgs...)
	}
	p, err := s.activeProduct(ctx, in.ProductID)
	if err != nil {
		return Cart{}, err
	}
	stock, ok := p.StockFor(in.Size)
	if !ok {
		return Cart{}, apperr.Business("size %s is not available for %s", in.Size, p.Name)
	}
	// warna hanya divalidasi kalau produk memang punya daftar warna
	if len(p.Colors) > 0 && !p.HasColor(in.Color) {
		return Cart{}, apperr.Business("color %q is not available for %s", in.Color, p.Name)
	}

	c, err := s.Get(ctx, userID)
	if err != nil {
		return Cart{}, err
	}

	merged := false
	for i, it := range c.Items {
		if !it.sameVariant(p.ID, in.Size, in.Color) {
			continue
		}
		qty := it.Quantity + in.Quantity
		if qty > stock {
			return Cart{}, apperr.Business("only %d left in stock for %s (size %s)", stock, p.Name, in.Size)
		}
		c.Items[i].Quantity = qty
		merged = true
		break
	}
	if !merged {
		if in.Quantity > stock {
			return Cart{}, apperr.Business("only %d left in stock for %s (size %s)", stock, p.Name, in.Size)
		}
		c.Items = append(c.Items, Item{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			SalePrice: p.SalePrice,
			Image:     p.FirstImage(),
			Size:      in.Size,
			Color:     in.Color,
			Quantity:  in.Quantity,
		})
	}
	return s.save(ctx, c)
}

// UpdateItem re-checks live stock. A line whose product has gone inactive
// is dropped and reported as not found.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (Cart, error) {
	if quantity < 1 {
		return Cart{}, apperr.Validation("validation failed", "quantity must be >= 1")
	}
	c, err := s.Get(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	idx := c.index(itemID)
	if idx < 0 {
		return Cart{}, apperr.NotFound("cart item not found")
	}
	it := c.Items[idx]

	p, err := s.activeProduct(ctx, it.ProductID)
	if apperr.Is(err, apperr.KindNotFound) {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		if _, serr := s.save(ctx, c); serr != nil {
			return Cart{}, serr
		}
		return Cart{}, apperr.NotFound("product is no longer available and was removed from your cart")
	}
	if err != nil {
		return Cart{}, err
	}
	stock, ok := p.StockFor(it.Size)
	if !ok || quantity > stock {
		return Cart{}, apperr.Business("only %d left in stock for %s (size %s)", stock, p.Name, it.Size)
	}
	c.Items[idx].Quantity = quantity
	return s.save(ctx, c)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	idx := c.index(itemID)
	if idx < 0 {
		return Cart{}, apperr.NotFound("cart item not found")
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return s.save(ctx, c)
}

func (s *Service) Clear(ctx context.Context, userID string) (Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	c.Items = nil
	return s.save(ctx, c)
}

func (s *Service) activeProduct(ctx context.Context, id string) (catalog.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.Product{}, apperr.NotFound("product not found")
	}
	p, err := s.Products.Get(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) || (err == nil && !p.IsActive) {
		return catalog.Product{}, apperr.NotFound("product not found")
	}
	if err != nil {
		return catalog.Product{}, apperr.Internal("get product", err)
	}
	return p, nil
}

func (s *Service) save(ctx context.Context, c Cart) (Cart, error) {
	c.Recalculate()
	c.UpdatedAt = s.Now().UTC()
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, apperr.Internal("save cart", err)
	}
	return c, nil
}

func (c Cart) index(itemID string) int {
	for i, it := range c.Items {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}
