// Package lock serializes workflow operations on a single application across
// worker replicas with a Redis lease.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "loan-orchestrator/internal/common/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out per-application leases. A nil *Locker is valid and
// never blocks.
type Locker struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func New(client redis.Cmdable, prefix string, ttl time.Duration) *Locker {
	return &Locker{client: client, prefix: prefix, ttl: ttl}
}

// Lease is a held lock. Release is safe to call more than once.
type Lease struct {
	locker *Locker
	key    string
	token  string
}

func (l *Locker) key(applicationID string) string {
	return l.prefix + applicationID
}

// Acquire takes the lease for applicationID or fails with a retryable
// CONCURRENT_OPERATION error when another worker holds it.
func (l *Locker) Acquire(ctx context.Context, applicationID string) (*Lease, error) {
	if l == nil {
		return &Lease{}, nil
	}

	key := l.key(applicationID)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("acquire lock %s: %w", key, err))
	}
	if !ok {
		return nil, apperrors.NewConcurrentOperationError(applicationID)
	}
	return &Lease{locker: l, key: key, token: token}, nil
}

// Release drops the lease only if it is still ours; an expired lease that a
// different worker has since taken is left alone.
func (lease *Lease) Release(ctx context.Context) error {
	if lease == nil || lease.locker == nil {
		return nil
	}
	err := releaseScript.Run(ctx, lease.locker.client, []string{lease.key}, lease.token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", lease.key, err)
	}
	lease.locker = nil
	return nil
}
