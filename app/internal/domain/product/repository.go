package product

import "context"

// Catalog is the read side every storefront operation depends on.
type Catalog interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
}

type Repository interface {
	Catalog
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, p *Product) (*Product, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// IndexByID keys products by id for pricing lookups.
func IndexByID(products []*Product) map[int64]*Product {
	m := make(map[int64]*Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}
