package cart

import "context"

type Repository interface {
	ListItems(ctx context.Context, owner string) ([]Line, error)
	SetItem(ctx context.Context, owner string, productID int64, quantity int64) error
	RemoveItem(ctx context.Context, owner string, productID int64) error
	Clear(ctx context.Context, owner string) error
}
