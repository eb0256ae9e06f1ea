package catalog

import (
	"fmt"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/ariefcatur/evn-storefront/internal/validate"
)

// Validate collects every failing field instead of stopping at the first.
func (in ProductInput) Validate() error {
	msgs := validate.Struct(in)

	if in.Price.IsNegative() {
		msgs = append(msgs, "price must not be negative")
	}
	if in.SalePrice != nil {
		if in.SalePrice.IsNegative() {
			msgs = append(msgs, "salePrice must not be negative")
		}
		if in.SalePrice.GreaterThanOrEqual(in.Price) {
			msgs = append(msgs, "salePrice must be lower than price")
		}
	}
	if in.Category != "" && !in.Category.Valid() {
		msgs = append(msgs, fmt.Sprintf("category must be one of %v", Categories))
	}

	seen := map[Size]bool{}
	for i, s := range in.Sizes {
		if !s.Size.Valid() {
			msgs = append(msgs, fmt.Sprintf("sizes[%d].size must be one of %v", i, Sizes))
		}
		if seen[s.Size] {
			msgs = append(msgs, fmt.Sprintf("sizes[%d].size %s is duplicated", i, s.Size))
		}
		seen[s.Size] = true
		if s.Stock < 0 {
			msgs = append(msgs, fmt.Sprintf("sizes[%d].stock must not be negative", i))
		}
	}

	if len(msgs) > 0 {
		return apperr.Validation("validation failed", msgs...)
	}
	return nil
}
