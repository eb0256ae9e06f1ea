package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("product not found")

// Store is implemented by Repo (Postgres) and by in-memory fakes in tests.
type Store interface {
	List(ctx context.Context, q ListQuery) ([]Product, int, error)
	Get(ctx context.Context, id string) (Product, error)
	Insert(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	SetActive(ctx context.Context, id string, active bool) error
}

type Service struct {
	Store Store
	Now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{Store: store, Now: time.Now}
}

const (
	defaultLimit = 12
	maxLimit     = 100
)

func (s *Service) List(ctx context.Context, q ListQuery) (Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	if !q.Sort.Valid() {
		return Page{}, apperr.Validation("invalid query", fmt.Sprintf("sort must be one of %s|%s|%s|%s|%s|%s",
			SortNewest, SortPriceAsc, SortPriceDesc, SortName, SortRating, SortPopularity))
	}
	if q.Category != "" && !q.Category.Valid() {
		return Page{}, apperr.Validation("invalid query", fmt.Sprintf("category must be one of %v", Categories))
	}

	products, total, err := s.Store.List(ctx, q)
	if err != nil {
		return Page{}, apperr.Internal("list products", err)
	}
	if products == nil {
		products = []Product{}
	}
	return Page{
		Products:   products,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: (total + q.Limit - 1) / q.Limit,
	}, nil
}

// Get hides inactive products; shoppers must not see soft-deleted items.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !p.IsActive {
		return Product{}, apperr.NotFound("product not found")
	}
	return p, nil
}

// GetAny returns the product regardless of its active flag (admin views).
func (s *Service) GetAny(ctx context.Context, id string) (Product, error) {
	return s.get(ctx, id)
}

func (s *Service) get(ctx context.Context, id string) (Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Product{}, apperr.NotFound("product not found")
	}
	p, err := s.Store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Product{}, apperr.NotFound("product not found")
	}
	if err != nil {
		return Product{}, apperr.Internal("get product", err)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	now := s.Now().UTC()
	p := Product{
		ID:        uuid.NewString(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(&p, in)
	if err := s.Store.Insert(ctx, p); err != nil {
		return Product{}, apperr.Internal("create product", err)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	p, err := s.get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	apply(&p, in)
	p.UpdatedAt = s.Now().UTC()
	if err := s.Store.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, apperr.NotFound("product not found")
		}
		return Product{}, apperr.Internal("update product", err)
	}
	return p, nil
}

// Delete is a soft delete. Orders keep their snapshots of the product.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.Store.SetActive(ctx, id, false); err != nil {
		return apperr.Internal("deactivate product", err)
	}
	return nil
}

func apply(p *Product, in ProductInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.SalePrice = in.SalePrice
	p.Category = in.Category
	p.Colors = nonNil(in.Colors)
	p.Images = nonNil(in.Images)
	p.IsFeatured = in.IsFeatured
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	// soldCount per size is kept across edits
	sold := map[Size]int{}
	for _, s := range p.Sizes {
		sold[s.Size] = s.SoldCount
	}
	sizes := make([]SizeStock, 0, len(in.Sizes))
	for _, s := range in.Sizes {
		sizes = append(sizes, SizeStock{Size: s.Size, Stock: s.Stock, SoldCount: sold[s.Size]})
	}
	p.Sizes = sizes
	p.RecomputeTotalStock()
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
