package credentials

import (
	"context"

	"github.com/dmitrijs2005/credkeeper/internal/server/models"
)

// Repository is the credential store used by the verification flows.
type Repository interface {
	// FindByLoginOrEmail matches name case-insensitively against the login
	// name or the email. A login-name match wins over an email match.
	FindByLoginOrEmail(ctx context.Context, name string) (*models.Credential, error)
	FindByID(ctx context.Context, id string) (*models.Credential, error)
	// Save writes the mutable fields of c if c.Version is still current and
	// advances c.Version. A stale version yields common.ErrVersionConflict.
	Save(ctx context.Context, c *models.Credential) error
}
