package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"finance-manager/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

func (db *DB) migrate(dsn string) error {
	switch db.driver {
	case config.DriverSQLite:
		// Migrate through the live pool: a separate connection to ":memory:"
		// would see a different database. The migrator is left unclosed
		// because closing it closes the shared pool.
		driver, err := sqlite.WithInstance(db.conn, &sqlite.Config{})
		if err != nil {
			return &StoreError{Op: "create sqlite migration driver", Err: err}
		}
		_, err = runMigrations(db.driver, driver)
		return err

	case config.DriverPostgres:
		// A separate connection lets the migrator be closed without
		// touching the main pool.
		migrateDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return &StoreError{Op: "open migration database", Err: err}
		}
		defer migrateDB.Close()

		driver, err := postgres.WithInstance(migrateDB, &postgres.Config{})
		if err != nil {
			return &StoreError{Op: "create postgres migration driver", Err: err}
		}
		m, err := runMigrations(db.driver, driver)
		if m != nil {
			m.Close()
		}
		return err
	}

	return fmt.Errorf("no migrations for driver %q", db.driver)
}

func runMigrations(dialect string, driver database.Driver) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		return nil, &StoreError{Op: "create migrate instance", Err: err}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return m, &StoreError{Op: "run migrations", Err: err}
	}
	return m, nil
}
