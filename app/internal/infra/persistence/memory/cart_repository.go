package memory

import (
	"context"

	domcart "example.com/lara-pickles/app/internal/domain/cart"
)

type CartRepository struct {
	s *Store
}

func (r *CartRepository) ListItems(ctx context.Context, owner string) ([]domcart.Line, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := make([]domcart.Line, 0, len(r.s.carts[owner]))
	for productID, quantity := range r.s.carts[owner] {
		items = append(items, domcart.Line{ProductID: productID, Quantity: quantity})
	}
	return items, nil
}

func (r *CartRepository) SetItem(ctx context.Context, owner string, productID, quantity int64) error {
	if quantity < 1 {
		return domcart.ErrInvalidQuantity
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.carts[owner] == nil {
		r.s.carts[owner] = make(map[int64]int64)
	}
	r.s.carts[owner][productID] = quantity
	return nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, owner string, productID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.carts[owner], productID)
	if len(r.s.carts[owner]) == 0 {
		delete(r.s.carts, owner)
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, owner string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.carts, owner)
	return nil
}
