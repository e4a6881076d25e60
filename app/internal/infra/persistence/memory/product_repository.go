package memory

import (
	"context"

	domproduct "example.com/lara-pickles/app/internal/domain/product"
)

type ProductRepository struct {
	s *Store
}

func (r *ProductRepository) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cloned := *p
	cloned.ID = r.s.nextProductID
	r.s.nextProductID++
	r.s.products[cloned.ID] = &cloned

	out := cloned
	return &out, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[p.ID]; !ok {
		return nil, domproduct.ErrProductNotFound
	}
	cloned := *p
	r.s.products[p.ID] = &cloned

	out := cloned
	return &out, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return domproduct.ErrProductNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, domproduct.ErrProductNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*domproduct.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			cloned := *p
			result = append(result, &cloned)
		}
	}
	return result, nil
}

func (r *ProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	r.s.mu.RLock()
	all := make([]*domproduct.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		cloned := *p
		all = append(all, &cloned)
	}
	r.s.mu.RUnlock()

	return domproduct.Apply(all, filter), nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.products)), nil
}
