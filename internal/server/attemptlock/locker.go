// Package attemptlock serializes credential attempts for one user
// across server replicas. It narrows the read-modify-write window on the
// failure counters; the store's version check remains the final guard.
package attemptlock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// Locker grants exclusive use of a key until release is called or the lock
// expires on its own.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(context.Context), error)
}

var (
	_ Locker = NopLocker{}
	_ Locker = (*RedisLocker)(nil)
)

// DefaultTTL bounds how long a lock outlives a crashed holder when no
// positive ttl is given.
const DefaultTTL = 5 * time.Second

// NopLocker never blocks. Used when no Redis is configured.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string) (func(context.Context), error) {
	return func(context.Context) {}, nil
}

var errHeld = errors.New("lock held")

// releaseScript deletes the key only if it still carries our token, so an
// expired lock re-acquired by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX and a token-checked delete.
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
}

// NewRedisLocker returns a locker whose locks expire after ttl and whose
// Acquire gives up after waiting up to wait. A ttl of zero or less would
// leave keys without expiry, so DefaultTTL is used instead.
func NewRedisLocker(client redis.UniversalClient, ttl, wait time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{client: client, ttl: ttl, wait: wait, poll: 20 * time.Millisecond}
}

func lockKey(key string) string {
	return "credkeeper:attempt:" + strings.ToLower(strings.TrimSpace(key))
}

// Acquire returns common.ErrAttemptInProgress when the lock stays held for
// the whole wait budget. Redis failures are returned as errors; attempts do
// not proceed unlocked.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(context.Context), error) {
	token, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}
	k := lockKey(key)

	b := retry.WithMaxDuration(l.wait, retry.NewConstant(l.poll))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("attempt lock unavailable: %w", err)
		}
		if !ok {
			return retry.RetryableError(errHeld)
		}
		return nil
	})
	if errors.Is(err, errHeld) {
		return nil, common.ErrAttemptInProgress
	}
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) {
		_ = releaseScript.Run(ctx, l.client, []string{k}, token).Err()
	}, nil
}
