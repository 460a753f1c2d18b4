// Package models holds the server-side records shared by repositories and
// services.
package models

import "time"

// CredentialType selects which stored secret a check is made against.
type CredentialType string

const (
	CredentialPassword    CredentialType = "password"
	CredentialAPIToken    CredentialType = "api_token"
	CredentialVerifyToken CredentialType = "verify_token"
)

// Credential is the stored credential row of one user. Nil pointers are
// NULL columns: FailureCount == nil means no recent failures.
type Credential struct {
	ID              string
	LoginName       string
	Email           string
	Active          bool
	PasswordHash    *string
	VerifyTokenHash *string
	APITokenCipher  *string
	FailureCount    *int
	LastFailureAt   *time.Time
	LastLoginAt     *time.Time

	// Version backs the optimistic check on save.
	Version int64
}

// Clone returns a deep copy so callers can mutate without aliasing the
// original's pointer fields.
func (c *Credential) Clone() *Credential {
	out := *c
	out.PasswordHash = clonePtr(c.PasswordHash)
	out.VerifyTokenHash = clonePtr(c.VerifyTokenHash)
	out.APITokenCipher = clonePtr(c.APITokenCipher)
	out.FailureCount = clonePtr(c.FailureCount)
	out.LastFailureAt = clonePtr(c.LastFailureAt)
	out.LastLoginAt = clonePtr(c.LastLoginAt)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// SanitizedCredential is what a successfully authenticated caller gets back:
// no hashes, and the API token in clear form.
type SanitizedCredential struct {
	ID          string
	LoginName   string
	Email       string
	Active      bool
	APIToken    string
	LastLoginAt *time.Time
}
