package order

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateFromCart stores o and empties owner's cart as one atomic write.
	CreateFromCart(ctx context.Context, owner string, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// List returns orders newest first.
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	FindByContact(ctx context.Context, q LookupQuery) ([]*Order, error)
	// UpdateStatus loads the order, lets apply change its status and writes it
	// back, all under one lock or transaction. Only Status is persisted.
	UpdateStatus(ctx context.Context, id uuid.UUID, apply func(o *Order) error) (*Order, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
