package product

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	ImageRef    string
	Category    string
	Rating      float64
	IsActive    bool
}

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if !p.UnitPrice.IsPositive() {
		return ErrInvalidPrice
	}
	if strings.TrimSpace(p.Category) == "" {
		return ErrInvalidCategory
	}
	return nil
}

type SortKey string

const (
	SortByName      SortKey = "name"
	SortByPriceLow  SortKey = "price-low"
	SortByPriceHigh SortKey = "price-high"
	SortByRating    SortKey = "rating"
)

func (k SortKey) IsValid() bool {
	switch k {
	case "", SortByName, SortByPriceLow, SortByPriceHigh, SortByRating:
		return true
	default:
		return false
	}
}

type ListFilter struct {
	Category   string
	Search     string
	Sort       SortKey
	OnlyActive bool
}

// Matches reports whether p passes the category, search and active filters.
// Search looks at name and description, case-insensitively.
func (f ListFilter) Matches(p *Product) bool {
	if f.OnlyActive && !p.IsActive {
		return false
	}
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	}
	return true
}

// Apply filters and sorts products in memory. The input slice is not modified.
func Apply(products []*Product, f ListFilter) []*Product {
	out := make([]*Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}

	var less func(a, b *Product) bool
	switch f.Sort {
	case SortByPriceLow:
		less = func(a, b *Product) bool { return a.UnitPrice.LessThan(b.UnitPrice) }
	case SortByPriceHigh:
		less = func(a, b *Product) bool { return a.UnitPrice.GreaterThan(b.UnitPrice) }
	case SortByRating:
		less = func(a, b *Product) bool { return a.Rating > b.Rating }
	default:
		less = func(a, b *Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
