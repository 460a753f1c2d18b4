// Package repomanager wires repository constructors and goose migrations for
// the configured SQL dialect.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/credentials"
	"github.com/pressly/goose/v3"
)

var migrationDirs = map[dbx.Dialect]string{
	dbx.DialectPostgres: "postgres",
	dbx.DialectSQLite:   "sqlite",
}

// SQLRepositoryManager vends SQL-backed repositories. The same repository
// code serves every supported dialect; only migrations differ.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

// Credentials returns a credentials.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations of the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(string(m.dialect)); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, migrationDirs[m.dialect])
}

// NewSQLRepositoryManager constructs a RepositoryManager for dialect.
func NewSQLRepositoryManager(dialect dbx.Dialect) (RepositoryManager, error) {
	if _, ok := migrationDirs[dialect]; !ok {
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	return &SQLRepositoryManager{dialect: dialect}, nil
}
