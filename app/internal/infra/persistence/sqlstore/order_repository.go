package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"example.com/lara-pickles/app/internal/domain/failure"
	domorder "example.com/lara-pickles/app/internal/domain/order"
)

const orderColumns = `id, customer_email, customer_phone, total_amount, delivery_address, contact_phone, notes, status, created_at`

type orderRow struct {
	ID              uuid.UUID       `db:"id"`
	CustomerEmail   string          `db:"customer_email"`
	CustomerPhone   string          `db:"customer_phone"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	DeliveryAddress string          `db:"delivery_address"`
	ContactPhone    string          `db:"contact_phone"`
	Notes           string          `db:"notes"`
	Status          string          `db:"status"`
	CreatedAt       time.Time       `db:"created_at"`
}

func (r orderRow) toDomain(lines []domorder.Line) *domorder.Order {
	if lines == nil {
		lines = []domorder.Line{}
	}
	return &domorder.Order{
		ID:              r.ID,
		Customer:        domorder.CustomerRef{Email: r.CustomerEmail, Phone: r.CustomerPhone},
		Lines:           lines,
		TotalAmount:     r.TotalAmount,
		DeliveryAddress: r.DeliveryAddress,
		ContactPhone:    r.ContactPhone,
		Notes:           r.Notes,
		Status:          domorder.Status(r.Status),
		CreatedAt:       r.CreatedAt.UTC(),
	}
}

type orderLineRow struct {
	OrderID   uuid.UUID       `db:"order_id"`
	LineNo    int             `db:"line_no"`
	ProductID int64           `db:"product_id"`
	Name      string          `db:"product_name"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	Quantity  int64           `db:"quantity"`
}

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateFromCart writes the order and its lines and removes the cart lines it
// was built from, all in one transaction. Lines added to the cart after the
// snapshot stay.
func (r *OrderRepository) CreateFromCart(ctx context.Context, owner string, o *domorder.Order) (retErr error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return failure.Unavailable(err, "begin checkout")
	}
	defer rollback(tx, &retErr)

	_, err = tx.ExecContext(ctx, tx.Rebind(`
        INSERT INTO orders (`+orderColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `), o.ID, o.Customer.Email, o.Customer.Phone, o.TotalAmount, o.DeliveryAddress, o.ContactPhone, o.Notes, string(o.Status), o.CreatedAt.UTC())
	if err != nil {
		return failure.Unavailable(err, "insert order")
	}

	for i, l := range o.Lines {
		_, err = tx.ExecContext(ctx, tx.Rebind(`
            INSERT INTO order_lines (order_id, line_no, product_id, product_name, unit_price, quantity)
            VALUES (?, ?, ?, ?, ?, ?)
        `), o.ID, i, l.ProductID, l.Name, l.UnitPrice, l.Quantity)
		if err != nil {
			return failure.Unavailable(err, "insert order line")
		}
	}

	if len(o.Lines) > 0 {
		productIDs := make([]int64, 0, len(o.Lines))
		for _, l := range o.Lines {
			productIDs = append(productIDs, l.ProductID)
		}
		query, args, err := sqlx.In(`DELETE FROM cart_items WHERE owner = ? AND product_id IN (?)`, owner, productIDs)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return failure.Unavailable(err, "clear cart")
		}
	}

	if err = tx.Commit(); err != nil {
		return failure.Unavailable(err, "commit checkout")
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domorder.Order, error) {
	var row orderRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domorder.ErrOrderNotFound
		}
		return nil, failure.Unavailable(err, "get order")
	}
	lines, err := r.loadLines(ctx, r.db, []uuid.UUID{row.ID})
	if err != nil {
		return nil, err
	}
	return row.toDomain(lines[row.ID]), nil
}

func (r *OrderRepository) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	return r.query(ctx, query, args...)
}

func (r *OrderRepository) FindByContact(ctx context.Context, q domorder.LookupQuery) ([]*domorder.Order, error) {
	q = q.Normalize()
	var clauses []string
	var args []any
	if q.Email != "" {
		clauses = append(clauses, "LOWER(customer_email) = ?")
		args = append(args, q.Email)
	}
	if q.Phone != "" {
		clauses = append(clauses, "customer_phone = ?", "contact_phone = ?")
		args = append(args, q.Phone, q.Phone)
	}
	if len(clauses) == 0 {
		return []*domorder.Order{}, nil
	}
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+strings.Join(clauses, " OR "), args...)
}

// UpdateStatus locks the order row for the length of the transaction so two
// concurrent transitions are serialized and the second sees the first's
// result.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, apply func(o *domorder.Order) error) (_ *domorder.Order, retErr error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, failure.Unavailable(err, "begin status update")
	}
	defer rollback(tx, &retErr)

	var row orderRow
	err = tx.GetContext(ctx, &row, tx.Rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domorder.ErrOrderNotFound
		}
		return nil, failure.Unavailable(err, "lock order")
	}
	lines, err := r.loadLines(ctx, tx, []uuid.UUID{row.ID})
	if err != nil {
		return nil, err
	}

	o := row.toDomain(lines[row.ID])
	if err = apply(o); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE orders SET status = ? WHERE id = ?`), string(o.Status), id); err != nil {
		return nil, failure.Unavailable(err, "update order status")
	}
	if err = tx.Commit(); err != nil {
		return nil, failure.Unavailable(err, "commit status update")
	}

	// Only the status is persisted; hand back the stored row with it applied.
	stored := row.toDomain(lines[row.ID])
	stored.Status = o.Status
	return stored, nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[domorder.Status]int64, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int64  `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS n FROM orders GROUP BY status`); err != nil {
		return nil, failure.Unavailable(err, "count orders")
	}
	counts := make(map[domorder.Status]int64, len(rows))
	for _, row := range rows {
		counts[domorder.Status(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *OrderRepository) query(ctx context.Context, query string, args ...any) ([]*domorder.Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query+` ORDER BY created_at DESC, id DESC`), args...); err != nil {
		return nil, failure.Unavailable(err, "list orders")
	}
	if len(rows) == 0 {
		return []*domorder.Order{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	lines, err := r.loadLines(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}

	orders := make([]*domorder.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toDomain(lines[row.ID]))
	}
	domorder.SortNewestFirst(orders)
	return orders, nil
}

func (r *OrderRepository) loadLines(ctx context.Context, q sqlx.QueryerContext, orderIDs []uuid.UUID) (map[uuid.UUID][]domorder.Line, error) {
	query, args, err := sqlx.In(`
        SELECT order_id, line_no, product_id, product_name, unit_price, quantity
        FROM order_lines
        WHERE order_id IN (?)
        ORDER BY order_id, line_no
    `, orderIDs)
	if err != nil {
		return nil, err
	}

	var rows []orderLineRow
	if err := sqlx.SelectContext(ctx, q, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, failure.Unavailable(err, "load order lines")
	}

	byOrder := make(map[uuid.UUID][]domorder.Line, len(orderIDs))
	for _, row := range rows {
		byOrder[row.OrderID] = append(byOrder[row.OrderID], domorder.Line{
			ProductID: row.ProductID,
			Name:      row.Name,
			UnitPrice: row.UnitPrice,
			Quantity:  row.Quantity,
		})
	}
	return byOrder, nil
}
