package credentials

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
)

var columns = []string{
	"id", "login_name", "email", "active", "password_hash", "verify_token_hash", "api_token_cipher",
	"failure_count", "last_failure_at", "last_login_at", "version",
}

const (
	findByNameQuery = `(?s)^SELECT\s+id,.*FROM\s+credentials\s+WHERE\s+lower\(login_name\)\s*=\s*lower\(\$1\)\s+OR\s+lower\(email\)\s*=\s*lower\(\$1\)\s+ORDER\s+BY.*LIMIT\s+1\s*$`
	findByIDQuery   = `(?s)^SELECT\s+id,.*FROM\s+credentials\s+WHERE\s+id\s*=\s*\$1\s*$`
	saveQuery       = `(?s)^UPDATE\s+credentials\s+SET\s+password_hash\s*=\s*\$3,\s*failure_count\s*=\s*\$4,\s*last_failure_at\s*=\s*\$5,\s*last_login_at\s*=\s*\$6,\s*version\s*=\s*version\s*\+\s*1\s+WHERE\s+id\s*=\s*\$1\s+AND\s+version\s*=\s*\$2\s+RETURNING\s+version\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestFindByLoginOrEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	last := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows(columns).
		AddRow("u-1", "alice", "alice@example.com", true, "$argon2id$x", nil, "c2VhbGVk", int64(2), last, nil, int64(7))
	mock.ExpectQuery(findByNameQuery).WithArgs("Alice").WillReturnRows(rows)

	got, err := repo.FindByLoginOrEmail(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("FindByLoginOrEmail error: %v", err)
	}
	if got.ID != "u-1" || got.LoginName != "alice" || !got.Active || got.Version != 7 {
		t.Fatalf("unexpected credential: %+v", got)
	}
	if got.PasswordHash == nil || *got.PasswordHash != "$argon2id$x" {
		t.Fatalf("password hash not scanned: %v", got.PasswordHash)
	}
	if got.VerifyTokenHash != nil || got.LastLoginAt != nil {
		t.Fatalf("NULL columns must scan to nil: %+v", got)
	}
	if got.FailureCount == nil || *got.FailureCount != 2 || got.LastFailureAt == nil || !got.LastFailureAt.Equal(last) {
		t.Fatalf("failure state not scanned: %v %v", got.FailureCount, got.LastFailureAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestFindByLoginOrEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findByNameQuery).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByLoginOrEmail(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByLoginOrEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findByNameQuery).WithArgs("alice").WillReturnError(errors.New("db down"))

	_, err := repo.FindByLoginOrEmail(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("u-2", "bob", "bob@example.com", false, nil, nil, nil, nil, nil, nil, int64(0))
	mock.ExpectQuery(findByIDQuery).WithArgs("u-2").WillReturnRows(rows)

	got, err := repo.FindByID(context.Background(), "u-2")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got.Active || got.PasswordHash != nil || got.FailureCount != nil {
		t.Fatalf("unexpected credential: %+v", got)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findByIDQuery).WithArgs("u-x").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "u-x")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSave_AdvancesVersion(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	count := 1
	now := time.Now().UTC()
	c := &models.Credential{ID: "u-1", FailureCount: &count, LastFailureAt: &now, Version: 3}

	mock.ExpectQuery(saveQuery).
		WithArgs("u-1", int64(3), nil, 1, sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(4)))

	if err := repo.Save(context.Background(), c); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if c.Version != 4 {
		t.Fatalf("version not advanced: %d", c.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestSave_StaleVersion(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	c := &models.Credential{ID: "u-1", Version: 3}
	mock.ExpectQuery(saveQuery).
		WithArgs("u-1", int64(3), nil, nil, nil, nil).
		WillReturnError(sql.ErrNoRows)

	err := repo.Save(context.Background(), c)
	if !errors.Is(err, common.ErrVersionConflict) {
		t.Fatalf("want ErrVersionConflict, got %v", err)
	}
	if c.Version != 3 {
		t.Fatalf("version must stay on conflict: %d", c.Version)
	}
}

func TestSave_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(saveQuery).WillReturnError(errors.New("db err"))

	err := repo.Save(context.Background(), &models.Credential{ID: "u-1"})
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
