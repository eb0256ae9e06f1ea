package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryTShirts        Category = "t-shirts"
	CategoryCasual         Category = "casual"
	CategoryPremium        Category = "premium"
	CategoryLimitedEdition Category = "limited-edition"
)

var Categories = []Category{CategoryTShirts, CategoryCasual, CategoryPremium, CategoryLimitedEdition}

func (c Category) Valid() bool {
	for _, x := range Categories {
		if c == x {
			return true
		}
	}
	return false
}

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

func (s Size) Valid() bool {
	for _, x := range Sizes {
		if s == x {
			return true
		}
	}
	return false
}

type SizeStock struct {
	Size      Size `json:"size" yaml:"size"`
	Stock     int  `json:"stock" yaml:"stock"`
	SoldCount int  `json:"soldCount" yaml:"-"`
}

type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice,omitempty"`
	Category    Category         `json:"category"`
	Sizes       []SizeStock      `json:"sizes"`
	Colors      []string         `json:"colors"`
	Images      []string         `json:"images"`
	IsActive    bool             `json:"isActive"`
	IsFeatured  bool             `json:"isFeatured"`
	Rating      Rating           `json:"rating"`
	TotalStock  int              `json:"totalStock"`
	SoldCount   int              `json:"soldCount"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// RecomputeTotalStock must run whenever Sizes changes.
func (p *Product) RecomputeTotalStock() {
	total := 0
	for _, s := range p.Sizes {
		total += s.Stock
	}
	p.TotalStock = total
}

// EffectivePrice is the sale price when set, the list price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// StockFor reports the stock of size and whether the product carries it.
func (p Product) StockFor(size Size) (int, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Stock, true
		}
	}
	return 0, false
}

func (p Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// FirstImage is what carts and orders snapshot.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type SortOrder string

const (
	SortNewest     SortOrder = "newest"
	SortPriceAsc   SortOrder = "price_asc"
	SortPriceDesc  SortOrder = "price_desc"
	SortName       SortOrder = "name"
	SortRating     SortOrder = "rating"
	SortPopularity SortOrder = "popularity"
)

func (s SortOrder) Valid() bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortName, SortRating, SortPopularity:
		return true
	}
	return false
}

type ListQuery struct {
	Category        Category
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Search          string
	Featured        *bool
	Sort            SortOrder
	Page            int
	Limit           int
	IncludeInactive bool
}

type Page struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// ProductInput is the admin payload for create and update.
type ProductInput struct {
	Name        string           `json:"name" validate:"required,min=2,max=100"`
	Description string           `json:"description" validate:"max=2000"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice,omitempty"`
	Category    Category         `json:"category" validate:"required"`
	Sizes       []SizeStock      `json:"sizes" validate:"required,min=1"`
	Colors      []string         `json:"colors" validate:"dive,required"`
	Images      []string         `json:"images" validate:"dive,required"`
	IsFeatured  bool             `json:"isFeatured"`
	IsActive    *bool            `json:"isActive,omitempty"`
}
