package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"example.com/lara-pickles/app/internal/domain/failure"
	domproduct "example.com/lara-pickles/app/internal/domain/product"
)

const productColumns = `id, name, description, unit_price, image_ref, category, rating, is_active`

type productRow struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	ImageRef    string          `db:"image_ref"`
	Category    string          `db:"category"`
	Rating      float64         `db:"rating"`
	IsActive    bool            `db:"is_active"`
}

func (r productRow) toDomain() *domproduct.Product {
	return &domproduct.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		UnitPrice:   r.UnitPrice,
		ImageRef:    r.ImageRef,
		Category:    r.Category,
		Rating:      r.Rating,
		IsActive:    r.IsActive,
	}
}

type ProductRepository struct {
	db      *sqlx.DB
	dialect Dialect
}

func NewProductRepository(db *sqlx.DB, dialect Dialect) *ProductRepository {
	return &ProductRepository{db: db, dialect: dialect}
}

func (r *ProductRepository) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	query := `
        INSERT INTO products (name, description, unit_price, image_ref, category, rating, is_active)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	args := []any{p.Name, p.Description, p.UnitPrice, p.ImageRef, p.Category, p.Rating, p.IsActive}

	created := *p
	if r.dialect == Postgres {
		row := r.db.QueryRowxContext(ctx, r.db.Rebind(query+" RETURNING id"), args...)
		if err := row.Scan(&created.ID); err != nil {
			return nil, failure.Unavailable(err, "insert product")
		}
		return &created, nil
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, failure.Unavailable(err, "insert product")
	}
	if created.ID, err = res.LastInsertId(); err != nil {
		return nil, failure.Unavailable(err, "insert product")
	}
	return &created, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
        UPDATE products
        SET name = ?, description = ?, unit_price = ?, image_ref = ?, category = ?, rating = ?, is_active = ?
        WHERE id = ?
    `), p.Name, p.Description, p.UnitPrice, p.ImageRef, p.Category, p.Rating, p.IsActive, p.ID)
	if err != nil {
		return nil, failure.Unavailable(err, "update product")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, failure.Unavailable(err, "update product")
	}
	// MySQL reports 0 rows when nothing changed, so confirm the row exists.
	if rows == 0 {
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	updated := *p
	return &updated, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return failure.Unavailable(err, "delete product")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return failure.Unavailable(err, "delete product")
	}
	if rows == 0 {
		return domproduct.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domproduct.ErrProductNotFound
		}
		return nil, failure.Unavailable(err, "get product")
	}
	return row.toDomain(), nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error) {
	if len(ids) == 0 {
		return []*domproduct.Product{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, failure.Unavailable(err, "get products")
	}
	return toProducts(rows), nil
}

// List filters in SQL and leaves ordering to domproduct.Apply so every store
// sorts the same way.
func (r *ProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var clauses []string
	var args []any

	if c := strings.TrimSpace(filter.Category); c != "" {
		clauses = append(clauses, "LOWER(category) = ?")
		args = append(args, strings.ToLower(c))
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Search)); q != "" {
		clauses = append(clauses, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		like := "%" + escapeLike(q) + "%"
		args = append(args, like, like)
	}
	if filter.OnlyActive {
		clauses = append(clauses, "is_active = ?")
		args = append(args, true)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id"

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, failure.Unavailable(err, "list products")
	}
	return domproduct.Apply(toProducts(rows), filter), nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, failure.Unavailable(err, "count products")
	}
	return n, nil
}

func toProducts(rows []productRow) []*domproduct.Product {
	products := make([]*domproduct.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
