package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/credentials"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func stubGoose(t *testing.T, fn func(dir string) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return fn(dir)
	}
	t.Cleanup(func() { gooseUpContext = orig })
}

func TestNewSQLRepositoryManager(t *testing.T) {
	for _, d := range []dbx.Dialect{dbx.DialectPostgres, dbx.DialectSQLite} {
		m, err := NewSQLRepositoryManager(d)
		require.NoError(t, err)
		assert.NotNil(t, m)
	}

	_, err := NewSQLRepositoryManager("mysql")
	assert.Error(t, err)
}

func TestCredentials_ReturnsRepository(t *testing.T) {
	m, err := NewSQLRepositoryManager(dbx.DialectPostgres)
	require.NoError(t, err)

	var repo credentials.Repository = m.Credentials(newDB(t))
	assert.NotNil(t, repo)
}

func TestRunMigrations_UsesDialectDirectory(t *testing.T) {
	tests := []struct {
		dialect dbx.Dialect
		wantDir string
	}{
		{dialect: dbx.DialectPostgres, wantDir: "postgres"},
		{dialect: dbx.DialectSQLite, wantDir: "sqlite"},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			var gotDir string
			stubGoose(t, func(dir string) error {
				gotDir = dir
				return nil
			})

			m, err := NewSQLRepositoryManager(tt.dialect)
			require.NoError(t, err)
			require.NoError(t, m.RunMigrations(context.Background(), newDB(t)))
			assert.Equal(t, tt.wantDir, gotDir)
		})
	}
}

func TestRunMigrations_Error(t *testing.T) {
	stubGoose(t, func(string) error { return errors.New("boom") })

	m, err := NewSQLRepositoryManager(dbx.DialectPostgres)
	require.NoError(t, err)

	err = m.RunMigrations(context.Background(), newDB(t))
	assert.EqualError(t, err, "boom")
}
