package memory

import (
	"sync"

	"github.com/google/uuid"

	domorder "example.com/lara-pickles/app/internal/domain/order"
	domproduct "example.com/lara-pickles/app/internal/domain/product"
)

// Store keeps products, carts and orders in process memory. Everything goes
// through one mutex so that creating an order and clearing the cart it came
// from is a single critical section.
type Store struct {
	mu sync.RWMutex

	products      map[int64]*domproduct.Product
	nextProductID int64
	carts         map[string]map[int64]int64
	orders        map[uuid.UUID]*domorder.Order
}

func NewStore() *Store {
	return &Store{
		products:      make(map[int64]*domproduct.Product),
		nextProductID: 1,
		carts:         make(map[string]map[int64]int64),
		orders:        make(map[uuid.UUID]*domorder.Order),
	}
}

func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

func (s *Store) Carts() *CartRepository { return &CartRepository{s: s} }

func (s *Store) Orders() *OrderRepository { return &OrderRepository{s: s} }
