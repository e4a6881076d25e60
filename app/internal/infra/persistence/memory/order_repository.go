package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domorder "example.com/lara-pickles/app/internal/domain/order"
)

type OrderRepository struct {
	s *Store
}

// CreateFromCart stores the order and drops the cart lines it was built from.
// Lines added to the cart after the snapshot stay.
func (r *OrderRepository) CreateFromCart(ctx context.Context, owner string, o *domorder.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.orders[o.ID]; exists {
		return fmt.Errorf("order %s already exists", o.ID)
	}
	r.s.orders[o.ID] = o.Clone()
	if lines, ok := r.s.carts[owner]; ok {
		for _, l := range o.Lines {
			delete(lines, l.ProductID)
		}
		if len(lines) == 0 {
			delete(r.s.carts, owner)
		}
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domorder.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (r *OrderRepository) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	return r.collect(filter.Matches), nil
}

func (r *OrderRepository) FindByContact(ctx context.Context, q domorder.LookupQuery) ([]*domorder.Order, error) {
	return r.collect(q.Matches), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, apply func(o *domorder.Order) error) (*domorder.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.orders[id]
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	working := stored.Clone()
	if err := apply(working); err != nil {
		return nil, err
	}
	stored.Status = working.Status
	return stored.Clone(), nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[domorder.Status]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[domorder.Status]int64)
	for _, o := range r.s.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func (r *OrderRepository) collect(match func(*domorder.Order) bool) []*domorder.Order {
	r.s.mu.RLock()
	result := make([]*domorder.Order, 0)
	for _, o := range r.s.orders {
		if match(o) {
			result = append(result, o.Clone())
		}
	}
	r.s.mu.RUnlock()

	domorder.SortNewestFirst(result)
	return result
}
