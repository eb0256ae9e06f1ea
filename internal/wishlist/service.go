// Package wishlist keeps the products a user saved for later.
package wishlist

import (
	"context"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/ariefcatur/evn-storefront/internal/catalog"
)

type Store interface {
	// ProductIDs returns the saved ids, newest first.
	ProductIDs(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, productID string, at time.Time) error
	Remove(ctx context.Context, userID, productID string) error
}

// Products must hide inactive products behind a not-found error, as
// catalog.Service.Get does.
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

// List drops products that were deactivated after being saved.
func (s *Service) List(ctx context.Context, userID string) ([]catalog.Product, error) {
	ids, err := s.Store.ProductIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("list wishlist", err)
	}
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.Products.Get(ctx, id)
		if apperr.Is(err, apperr.KindNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Add is idempotent; saving the same product twice keeps one entry.
func (s *Service) Add(ctx context.Context, userID, productID string) ([]catalog.Product, error) {
	if _, err := s.Products.Get(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.Store.Add(ctx, userID, productID, s.Now().UTC()); err != nil {
		return nil, apperr.Internal("add to wishlist", err)
	}
	return s.List(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) ([]catalog.Product, error) {
	if err := s.Store.Remove(ctx, userID, productID); err != nil {
		return nil, apperr.Internal("remove from wishlist", err)
	}
	return s.List(ctx, userID)
}
