package credentials_test

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) (*credentials.PostgresRepository, dbx.DBTX) {
	t.Helper()
	ctx := context.Background()

	db, dialect, err := dbx.Open(ctx, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := repomanager.NewSQLRepositoryManager(dialect)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(ctx, db))

	return credentials.NewPostgresRepository(db), db
}

func insert(t *testing.T, db dbx.DBTX, id, login, email string, active bool) {
	t.Helper()
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO credentials (id, login_name, email, active, password_hash) VALUES ($1, $2, $3, $4, $5)`,
		id, login, email, active, "$argon2id$stub")
	require.NoError(t, err)
}

func TestSQLite_FindAndSave(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	ctx := context.Background()

	insert(t, db, "00000000-0000-0000-0000-000000000001", "Alice", "alice@example.com", true)

	byLogin, err := repo.FindByLoginOrEmail(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", byLogin.LoginName)
	assert.True(t, byLogin.Active)
	assert.Nil(t, byLogin.FailureCount)
	assert.Nil(t, byLogin.LastFailureAt)

	byEmail, err := repo.FindByLoginOrEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, byLogin.ID, byEmail.ID)

	count := 1
	at := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	byLogin.FailureCount = &count
	byLogin.LastFailureAt = &at
	require.NoError(t, repo.Save(ctx, byLogin))
	assert.Equal(t, int64(1), byLogin.Version)

	reloaded, err := repo.FindByID(ctx, byLogin.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.FailureCount)
	assert.Equal(t, 1, *reloaded.FailureCount)
	require.NotNil(t, reloaded.LastFailureAt)
	assert.True(t, at.Equal(*reloaded.LastFailureAt))
	assert.Equal(t, int64(1), reloaded.Version)
}

func TestSQLite_StaleSaveConflicts(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	ctx := context.Background()

	insert(t, db, "00000000-0000-0000-0000-000000000002", "bob", "bob@example.com", true)

	first, err := repo.FindByLoginOrEmail(ctx, "bob")
	require.NoError(t, err)
	second, err := repo.FindByLoginOrEmail(ctx, "bob")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, first))
	assert.ErrorIs(t, repo.Save(ctx, second), common.ErrVersionConflict)
}

func TestSQLite_LoginNameWinsOverEmail(t *testing.T) {
	repo, db := newSQLiteRepo(t)
	ctx := context.Background()

	insert(t, db, "00000000-0000-0000-0000-000000000003", "carol@example.com", "carol-a@example.com", true)
	insert(t, db, "00000000-0000-0000-0000-000000000004", "carol", "carol@example.com", true)

	got, err := repo.FindByLoginOrEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-0000-000000000003", got.ID)
}

func TestSQLite_NotFound(t *testing.T) {
	repo, _ := newSQLiteRepo(t)

	_, err := repo.FindByLoginOrEmail(context.Background(), "nobody")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
