// Package credentials provides the SQL-backed credential store. The queries
// run unchanged on PostgreSQL (pgx) and SQLite (modernc).
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
)

const selectColumns = `SELECT id, login_name, email, active, password_hash, verify_token_hash, api_token_cipher,
		        failure_count, last_failure_at, last_login_at, version
		 FROM credentials`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByLoginOrEmail(ctx context.Context, name string) (*models.Credential, error) {
	query := selectColumns + `
		 WHERE lower(login_name) = lower($1) OR lower(email) = lower($1)
		 ORDER BY (lower(login_name) = lower($1)) DESC
		 LIMIT 1
		 `
	return r.findOne(ctx, query, name)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Credential, error) {
	query := selectColumns + `
		 WHERE id = $1
		 `
	return r.findOne(ctx, query, id)
}

func (r *PostgresRepository) Save(ctx context.Context, c *models.Credential) error {
	query :=
		`UPDATE credentials
		 SET password_hash = $3, failure_count = $4, last_failure_at = $5, last_login_at = $6,
		     version = version + 1
		 WHERE id = $1 AND version = $2
		 RETURNING version
		 `

	var version int64
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.Version, c.PasswordHash, c.FailureCount, c.LastFailureAt, c.LastLoginAt).Scan(&version)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrVersionConflict
		}
		return fmt.Errorf("db error: %w", err)
	}

	c.Version = version
	return nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg string) (*models.Credential, error) {
	c := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.LoginName, &c.Email, &c.Active,
		&c.PasswordHash, &c.VerifyTokenHash, &c.APITokenCipher,
		&c.FailureCount, &c.LastFailureAt, &c.LastLoginAt, &c.Version,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}
