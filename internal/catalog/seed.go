package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

// harga ditulis sebagai string di YAML supaya tidak lewat float
type seedProduct struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Price       string      `yaml:"price"`
	SalePrice   string      `yaml:"salePrice"`
	Category    Category    `yaml:"category"`
	Sizes       []SizeStock `yaml:"sizes"`
	Colors      []string    `yaml:"colors"`
	Images      []string    `yaml:"images"`
	Featured    bool        `yaml:"featured"`
}

// ParseSeed decodes a YAML catalog into validated product inputs.
func ParseSeed(r io.Reader) ([]ProductInput, error) {
	var f seedFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	out := make([]ProductInput, 0, len(f.Products))
	for i, sp := range f.Products {
		price, err := decimal.NewFromString(sp.Price)
		if err != nil {
			return nil, fmt.Errorf("product %d (%s): price: %w", i, sp.Name, err)
		}
		in := ProductInput{
			Name:        sp.Name,
			Description: sp.Description,
			Price:       price,
			Category:    sp.Category,
			Sizes:       sp.Sizes,
			Colors:      sp.Colors,
			Images:      sp.Images,
			IsFeatured:  sp.Featured,
		}
		if sp.SalePrice != "" {
			sale, err := decimal.NewFromString(sp.SalePrice)
			if err != nil {
				return nil, fmt.Errorf("product %d (%s): salePrice: %w", i, sp.Name, err)
			}
			in.SalePrice = &sale
		}
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("product %d (%s): %w", i, sp.Name, err)
		}
		out = append(out, in)
	}
	return out, nil
}

// Seed creates every product through the service so totalStock and ids are
// assigned the same way admin creation does.
func (s *Service) Seed(ctx context.Context, inputs []ProductInput) (int, error) {
	n := 0
	for _, in := range inputs {
		if _, err := s.Create(ctx, in); err != nil {
			return n, fmt.Errorf("seed %s: %w", in.Name, err)
		}
		n++
	}
	return n, nil
}
