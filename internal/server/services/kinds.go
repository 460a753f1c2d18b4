package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/cryptox"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
)

// credentialKind compares a candidate against the stored secret of one
// credential type. A record with no stored secret of that type never
// matches.
type credentialKind interface {
	compare(ctx context.Context, rec *models.Credential, candidate string) (bool, error)
}

// hashedKind covers secrets stored as one-way hashes.
type hashedKind struct {
	hasher cryptox.Hasher
	stored func(*models.Credential) *string
}

func (k hashedKind) compare(_ context.Context, rec *models.Credential, candidate string) (bool, error) {
	stored := k.stored(rec)
	if stored == nil {
		return false, nil
	}
	ok, err := k.hasher.Verify(candidate, *stored)
	if err != nil {
		return false, fmt.Errorf("%w: stored hash: %v", common.ErrorInternal, err)
	}
	return ok, nil
}

// sealedKind covers secrets stored reversibly encrypted.
type sealedKind struct {
	cipher cryptox.Cipher
	stored func(*models.Credential) *string
}

func (k sealedKind) compare(_ context.Context, rec *models.Credential, candidate string) (bool, error) {
	stored := k.stored(rec)
	if stored == nil {
		return false, nil
	}
	clear, err := k.cipher.Decrypt(*stored)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(clear), []byte(candidate)) == 1, nil
}

func newKinds(hasher cryptox.Hasher, cipher cryptox.Cipher) map[models.CredentialType]credentialKind {
	return map[models.CredentialType]credentialKind{
		models.CredentialPassword: hashedKind{
			hasher: hasher,
			stored: func(c *models.Credential) *string { return c.PasswordHash },
		},
		models.CredentialVerifyToken: hashedKind{
			hasher: hasher,
			stored: func(c *models.Credential) *string { return c.VerifyTokenHash },
		},
		models.CredentialAPIToken: sealedKind{
			cipher: cipher,
			stored: func(c *models.Credential) *string { return c.APITokenCipher },
		},
	}
}
