// Package services implements credential verification and password changes
// on top of the credential repository.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/cryptox"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/attemptlock"
	"github.com/dmitrijs2005/credkeeper/internal/server/auth"
	"github.com/dmitrijs2005/credkeeper/internal/server/config"
	"github.com/dmitrijs2005/credkeeper/internal/server/lockout"
	"github.com/dmitrijs2005/credkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/semaphore"
)

const (
	conflictRetries = 3
	conflictBackoff = 10 * time.Millisecond
)

// CredentialService verifies credentials and changes passwords, keeping the
// lockout counters of each record up to date.
type CredentialService struct {
	db                          dbx.DBTX
	repomanager                 repomanager.RepositoryManager
	hasher                      cryptox.Hasher
	cipher                      cryptox.Cipher
	kinds                       map[models.CredentialType]credentialKind
	policy                      lockout.Policy
	workers                     *semaphore.Weighted
	locker                      attemptlock.Locker
	metrics                     *metrics.Recorder
	logger                      logging.Logger
	clock                       func() time.Time
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// Option customizes a CredentialService.
type Option func(*CredentialService)

// WithClock replaces the wall clock used to stamp attempts.
func WithClock(clock func() time.Time) Option {
	return func(s *CredentialService) { s.clock = clock }
}

// WithLocker serializes attempts per user across replicas.
func WithLocker(l attemptlock.Locker) Option {
	return func(s *CredentialService) { s.locker = l }
}

// WithMetrics records attempt outcomes.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *CredentialService) { s.metrics = r }
}

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(l logging.Logger) Option {
	return func(s *CredentialService) { s.logger = l }
}

// NewCredentialService builds a service using the lockout and hashing
// settings of cfg. Without options it uses the wall clock and no attempt
// lock.
func NewCredentialService(db dbx.DBTX, m repomanager.RepositoryManager, hasher cryptox.Hasher,
	cipher cryptox.Cipher, cfg *config.Config, opts ...Option) *CredentialService {
	workers := cfg.HashWorkers
	if workers < 1 {
		workers = 1
	}
	s := &CredentialService{
		db:                          db,
		repomanager:                 m,
		hasher:                      hasher,
		cipher:                      cipher,
		kinds:                       newKinds(hasher, cipher),
		policy:                      lockout.Policy{Limit: cfg.FailureLimit, Window: cfg.BlockWindow},
		workers:                     semaphore.NewWeighted(int64(workers)),
		locker:                      attemptlock.NopLocker{},
		logger:                      logging.Nop{},
		clock:                       time.Now,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CredentialService) now() time.Time {
	return s.clock().UTC()
}

// IssueAccessToken signs an access token for a verified user.
func (s *CredentialService) IssueAccessToken(userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}

// Verify checks secret against the stored credential of the given type for
// the user whose login name or email is nameOrEmail. On success the failure
// counters are cleared and a sanitized copy of the record is returned; on a
// mismatch the failure is recorded. While the user is locked out no
// comparison is made and nothing is written.
func (s *CredentialService) Verify(ctx context.Context, credType models.CredentialType,
	nameOrEmail, secret string) (cred *models.SanitizedCredential, err error) {
	start := time.Now()
	defer func() {
		s.metrics.VerifyAttempt(ctx, string(credType), err, time.Since(start))
	}()

	if strings.TrimSpace(nameOrEmail) == "" {
		return nil, &ValidationError{Field: "name_or_email"}
	}
	if strings.TrimSpace(secret) == "" {
		return nil, &ValidationError{Field: "secret"}
	}
	kind, ok := s.kinds[credType]
	if !ok {
		return nil, &ValidationError{Field: "credential_type", Reason: "is not supported"}
	}

	// lock on the record id so attempts by login name, email and user id
	// share one lock
	rec, err := s.findActive(ctx, s.repomanager.Credentials(s.db), nameOrEmail)
	if err != nil {
		return nil, err
	}
	release, err := s.locker.Acquire(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	err = s.withConflictRetry(ctx, func(ctx context.Context) error {
		var err error
		cred, err = s.verifyOnce(ctx, kind, nameOrEmail, secret)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cred, nil
}

func (s *CredentialService) verifyOnce(ctx context.Context, kind credentialKind,
	nameOrEmail, secret string) (*models.SanitizedCredential, error) {
	repo := s.repomanager.Credentials(s.db)

	rec, err := s.findActive(ctx, repo, nameOrEmail)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if d := s.policy.Decide(rec.FailureCount, rec.LastFailureAt, now); d.Blocked {
		s.logger.Warn(ctx, "credential locked", "user", nameOrEmail, "retry_after", d.RemainingSeconds())
		return nil, &LockedError{Remaining: d.Remaining}
	}

	matched, err := s.compare(ctx, kind, rec, secret)
	if err != nil {
		s.logger.Error(ctx, "credential compare failed", "user_id", rec.ID, "error", err)
		return nil, err
	}

	updated := rec.Clone()
	if !matched {
		count := 1
		if rec.FailureCount != nil {
			count = *rec.FailureCount + 1
		}
		updated.FailureCount = &count
		updated.LastFailureAt = &now
		if err := s.save(ctx, repo, updated); err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "credential mismatch", "user_id", rec.ID, "failure_count", count)
		return nil, common.ErrMismatch
	}

	updated.FailureCount = nil
	updated.LastFailureAt = nil
	updated.LastLoginAt = &now
	if err := s.save(ctx, repo, updated); err != nil {
		return nil, err
	}

	return s.sanitize(updated)
}

func (s *CredentialService) findActive(ctx context.Context, repo credentials.Repository, nameOrEmail string) (*models.Credential, error) {
	rec, err := repo.FindByLoginOrEmail(ctx, nameOrEmail)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotFoundOrInactive
		}
		s.logger.Error(ctx, "credential lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	if !rec.Active {
		return nil, common.ErrNotFoundOrInactive
	}
	return rec, nil
}

// ChangePassword replaces the password hash of userID. oldSecret must match
// the current password, unless the user has no password yet and oldSecret
// is nil. Lockout counters are left untouched.
func (s *CredentialService) ChangePassword(ctx context.Context, userID string, oldSecret *string, newSecret string) (err error) {
	defer func() { s.metrics.PasswordChange(ctx, err) }()

	if strings.TrimSpace(newSecret) == "" {
		return &ValidationError{Field: "new_password"}
	}
	if strings.TrimSpace(userID) == "" {
		return &ValidationError{Field: "user_id"}
	}
	if _, err := uuid.Parse(userID); err != nil {
		return &ValidationError{Field: "user_id", Reason: "must be a UUID"}
	}

	release, err := s.locker.Acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release(context.WithoutCancel(ctx))

	return s.withConflictRetry(ctx, func(ctx context.Context) error {
		return s.changePasswordOnce(ctx, userID, oldSecret, newSecret)
	})
}

func (s *CredentialService) changePasswordOnce(ctx context.Context, userID string, oldSecret *string, newSecret string) error {
	repo := s.repomanager.Credentials(s.db)

	rec, err := repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrNotFoundOrInactive
		}
		s.logger.Error(ctx, "credential lookup failed", "user_id", userID, "error", err)
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	if !rec.Active {
		return common.ErrNotFoundOrInactive
	}

	bootstrap := rec.PasswordHash == nil && oldSecret == nil
	if !bootstrap {
		if oldSecret == nil {
			return common.ErrMismatch
		}
		matched, err := s.compare(ctx, s.kinds[models.CredentialPassword], rec, *oldSecret)
		if err != nil {
			return err
		}
		if !matched {
			return common.ErrMismatch
		}
	}

	hash, err := s.hash(ctx, newSecret)
	if err != nil {
		return err
	}

	updated := rec.Clone()
	updated.PasswordHash = &hash
	if err := s.save(ctx, repo, updated); err != nil {
		return err
	}

	s.logger.Info(ctx, "password changed", "user_id", rec.ID, "bootstrap", bootstrap)
	return nil
}

// compare runs on one of the hashing worker slots.
func (s *CredentialService) compare(ctx context.Context, kind credentialKind, rec *models.Credential, candidate string) (bool, error) {
	if err := s.workers.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer s.workers.Release(1)
	return kind.compare(ctx, rec, candidate)
}

func (s *CredentialService) hash(ctx context.Context, secret string) (string, error) {
	if err := s.workers.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer s.workers.Release(1)

	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return hash, nil
}

// save writes c even if the caller has gone away: the comparison already
// happened and its outcome must be recorded.
func (s *CredentialService) save(ctx context.Context, repo credentials.Repository, c *models.Credential) error {
	err := repo.Save(context.WithoutCancel(ctx), c)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrVersionConflict):
		return err
	default:
		s.logger.Error(ctx, "credential save failed", "user_id", c.ID, "error", err)
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
}

// withConflictRetry re-runs fn from a fresh read when a concurrent writer
// got there first. Running out of retries is a persistence failure.
func (s *CredentialService) withConflictRetry(ctx context.Context, fn func(context.Context) error) error {
	b := retry.WithMaxRetries(conflictRetries, retry.NewConstant(conflictBackoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, common.ErrVersionConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
	if errors.Is(err, common.ErrVersionConflict) {
		s.logger.Error(ctx, "credential update kept conflicting", "error", err)
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	return err
}

func (s *CredentialService) sanitize(c *models.Credential) (*models.SanitizedCredential, error) {
	out := &models.SanitizedCredential{
		ID:          c.ID,
		LoginName:   c.LoginName,
		Email:       c.Email,
		Active:      c.Active,
		LastLoginAt: c.LastLoginAt,
	}
	if c.APITokenCipher != nil {
		token, err := s.cipher.Decrypt(*c.APITokenCipher)
		if err != nil {
			return nil, err
		}
		out.APIToken = token
	}
	return out, nil
}
