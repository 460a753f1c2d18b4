package dbx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name        string
		dsn         string
		wantDriver  string
		wantDialect Dialect
		wantSource  string
		wantErr     bool
	}{
		{
			name:        "postgres",
			dsn:         "postgres://u:p@db:5432/credkeeper?sslmode=disable",
			wantDriver:  "pgx",
			wantDialect: DialectPostgres,
			wantSource:  "postgres://u:p@db:5432/credkeeper?sslmode=disable",
		},
		{
			name:        "postgresql scheme",
			dsn:         "postgresql://db/credkeeper",
			wantDriver:  "pgx",
			wantDialect: DialectPostgres,
			wantSource:  "postgresql://db/credkeeper",
		},
		{
			name:        "sqlite scheme",
			dsn:         "sqlite:///var/lib/credkeeper.db",
			wantDriver:  "sqlite",
			wantDialect: DialectSQLite,
			wantSource:  "/var/lib/credkeeper.db",
		},
		{
			name:        "file uri",
			dsn:         "file:creds?mode=memory",
			wantDriver:  "sqlite",
			wantDialect: DialectSQLite,
			wantSource:  "file:creds?mode=memory",
		},
		{name: "mysql rejected", dsn: "mysql://root:secret@db/x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, dialect, source, err := ParseDSN(tt.dsn)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedDSN)
				assert.NotContains(t, err.Error(), "secret")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantDialect, dialect)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestOpen_SQLiteInMemory(t *testing.T) {
	ctx := context.Background()

	db, dialect, err := Open(ctx, "file:dbx_open?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, DialectSQLite, dialect)

	var _ DBTX = db

	var one int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT 1`).Scan(&one))
	assert.Equal(t, 1, one)
}

func TestOpen_Unsupported(t *testing.T) {
	_, _, err := Open(context.Background(), "redis://localhost")
	assert.True(t, errors.Is(err, ErrUnsupportedDSN))
}
