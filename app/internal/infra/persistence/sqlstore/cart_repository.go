package sqlstore

import (
	"context"

	"github.com/jmoiron/sqlx"

	domcart "example.com/lara-pickles/app/internal/domain/cart"
	"example.com/lara-pickles/app/internal/domain/failure"
)

type cartItemRow struct {
	ProductID int64 `db:"product_id"`
	Quantity  int64 `db:"quantity"`
}

type CartRepository struct {
	db      *sqlx.DB
	dialect Dialect
}

func NewCartRepository(db *sqlx.DB, dialect Dialect) *CartRepository {
	return &CartRepository{db: db, dialect: dialect}
}

func (r *CartRepository) ListItems(ctx context.Context, owner string) ([]domcart.Line, error) {
	var rows []cartItemRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
        SELECT product_id, quantity
        FROM cart_items
        WHERE owner = ?
        ORDER BY product_id
    `), owner)
	if err != nil {
		return nil, failure.Unavailable(err, "list cart items")
	}

	items := make([]domcart.Line, 0, len(rows))
	for _, row := range rows {
		items = append(items, domcart.Line{ProductID: row.ProductID, Quantity: row.Quantity})
	}
	return items, nil
}

// SetItem stores the absolute quantity for one line, inserting or replacing.
func (r *CartRepository) SetItem(ctx context.Context, owner string, productID, quantity int64) error {
	if quantity < 1 {
		return domcart.ErrInvalidQuantity
	}

	query := `
        INSERT INTO cart_items (owner, product_id, quantity)
        VALUES (?, ?, ?)
        ON DUPLICATE KEY UPDATE quantity = VALUES(quantity)
    `
	if r.dialect == Postgres {
		query = `
        INSERT INTO cart_items (owner, product_id, quantity)
        VALUES (?, ?, ?)
        ON CONFLICT (owner, product_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
    `
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), owner, productID, quantity); err != nil {
		return failure.Unavailable(err, "upsert cart item")
	}
	return nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, owner string, productID int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE owner = ? AND product_id = ?`), owner, productID)
	return failure.Unavailable(err, "remove cart item")
}

func (r *CartRepository) Clear(ctx context.Context, owner string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE owner = ?`), owner)
	return failure.Unavailable(err, "clear cart")
}
