package sqlstore

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

//go:embed migrations/mysql/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

func newMigrate(db *sqlx.DB, dialect Dialect) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "migrations/"+string(dialect))
	if err != nil {
		return nil, errors.Wrap(err, "load migrations")
	}

	var driver database.Driver
	switch dialect {
	case Postgres:
		driver, err = migratepgx.WithInstance(db.DB, &migratepgx.Config{})
	default:
		driver, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	}
	if err != nil {
		return nil, errors.Wrap(err, "migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		return nil, errors.Wrap(err, "init migrate")
	}
	return m, nil
}

// MigrateUp applies every pending migration. Being already current is not an
// error.
func MigrateUp(db *sqlx.DB, dialect Dialect) error {
	m, err := newMigrate(db, dialect)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migrate up")
	}
	return nil
}

// MigrateDown rolls back steps migrations.
func MigrateDown(db *sqlx.DB, dialect Dialect, steps int) error {
	m, err := newMigrate(db, dialect)
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migrate down")
	}
	return nil
}
