package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	"finance-manager/internal/config"
	"finance-manager/internal/interfaces"

	"github.com/shopspring/decimal"

	// Register the postgres driver
	_ "github.com/lib/pq"
	// Register the sqlite driver
	_ "modernc.org/sqlite"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps a sql.DB connection pool and implements interfaces.Store.
type DB struct {
	conn   *sql.DB
	q      querier
	driver string
}

var _ interfaces.Store = (*DB)(nil)

// Open connects to the configured database and runs migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite, config.DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	dsn := cfg.DSN
	if cfg.Driver == config.DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	conn, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}

	if cfg.Driver == config.DriverSQLite {
		// A single connection keeps ":memory:" databases alive across calls
		// and serialises writers.
		conn.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, &StoreError{Op: "connect", Err: err}
	}

	db := &DB{conn: conn, q: conn, driver: cfg.Driver}

	if err := db.migrate(cfg.DSN); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// sqliteDSN makes every new connection enforce foreign keys.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// NewDB opens a sqlite database at path (":memory:" for a throwaway one).
func NewDB(path string) (*DB, error) {
	return Open(context.Background(), config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          path,
		MaxOpenConns: 1,
	})
}

// Close closes the database connection.
func (db *DB) Close() error {
	if _, inTx := db.q.(*sql.Tx); inTx {
		return nil
	}
	return db.conn.Close()
}

// Driver returns the configured driver name.
func (db *DB) Driver() string {
	return db.driver
}

// InTx runs fn inside a database transaction. Nested calls join the
// outer transaction.
func (db *DB) InTx(ctx context.Context, fn func(tx interfaces.Store) error) (err error) {
	if _, inTx := db.q.(*sql.Tx); inTx {
		return fn(db)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "begin", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&DB{conn: db.conn, q: tx, driver: db.driver}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "commit", Err: err}
	}
	return nil
}

func (db *DB) exec(ctx context.Context, op, query string, args ...any) (sql.Result, error) {
	res, err := db.q.ExecContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, classify(op, err)
	}
	return res, nil
}

func (db *DB) query(ctx context.Context, op, query string, args ...any) (*sql.Rows, error) {
	rows, err := db.q.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, classify(op, err)
	}
	return rows, nil
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.q.QueryRowContext(ctx, db.rebind(query), args...)
}

// rebind rewrites "?" placeholders to "$n" for postgres.
func (db *DB) rebind(query string) string {
	if db.driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// Amounts are stored as integer minor units so SUM is exact everywhere.
func toCents(d decimal.Decimal) (int64, error) {
	c := d.Shift(2).Round(0)
	if c.GreaterThan(maxCents) || c.LessThan(minCents) {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, d.String())
	}
	return c.IntPart(), nil
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
