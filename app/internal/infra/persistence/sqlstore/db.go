package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "mysql"
}

func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case MySQL, Postgres:
		return Dialect(s), nil
	default:
		return "", fmt.Errorf("unsupported sql dialect %q", s)
	}
}

// Open connects and pings. MySQL DSNs get parseTime forced on so DATETIME
// columns scan into time.Time.
func Open(ctx context.Context, dialect Dialect, dsn string) (*sqlx.DB, error) {
	if dialect == MySQL {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, errors.Wrap(err, "parse mysql dsn")
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		dsn = cfg.FormatDSN()
	}

	db, err := sqlx.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", dialect)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping %s", dialect)
	}
	return db, nil
}

// Store hands out repositories bound to one connection pool.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
}

func NewStore(db *sqlx.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) Products() *ProductRepository { return NewProductRepository(s.db, s.dialect) }

func (s *Store) Carts() *CartRepository { return NewCartRepository(s.db, s.dialect) }

func (s *Store) Orders() *OrderRepository { return NewOrderRepository(s.db) }

func (s *Store) Close() error { return s.db.Close() }

func rollback(tx *sqlx.Tx, retErr *error) {
	if *retErr != nil {
		_ = tx.Rollback()
	}
}
