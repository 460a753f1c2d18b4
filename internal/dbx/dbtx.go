// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// and DSN-based driver selection.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect names the SQL flavour behind a connection. The values double as
// goose dialect names.
type Dialect string

const (
	DialectPostgres Dialect = "pgx"
	DialectSQLite   Dialect = "sqlite3"
)

var ErrUnsupportedDSN = errors.New("unsupported database dsn")

// ParseDSN maps a DSN to the database/sql driver name, the dialect and the
// data source string the driver expects.
//
//	postgres://... and postgresql://...  -> pgx
//	sqlite://path and file:path          -> sqlite (modernc)
func ParseDSN(dsn string) (driver string, dialect Dialect, source string, err error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", DialectPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", DialectSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "file:"):
		return "sqlite", DialectSQLite, dsn, nil
	default:
		return "", "", "", fmt.Errorf("%w: %q", ErrUnsupportedDSN, redact(dsn))
	}
}

// Open opens a pool for dsn and verifies it with a ping.
func Open(ctx context.Context, dsn string) (*sql.DB, Dialect, error) {
	driver, dialect, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, "", fmt.Errorf("db open error: %w", err)
	}

	if dialect == DialectSQLite {
		// one writer keeps SQLite from returning SQLITE_BUSY under load
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("db ping error: %w", err)
	}

	return db, dialect, nil
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(dsn string) string {
	if scheme, _, ok := strings.Cut(dsn, "://"); ok {
		return scheme + "://..."
	}
	if len(dsn) > 8 {
		return dsn[:8] + "..."
	}
	return dsn
}
