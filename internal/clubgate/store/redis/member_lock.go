// Package redis provides a member lock shared across clubgate instances.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

const (
	// memberLockKeyPrefix is the prefix for all member lock keys.
	memberLockKeyPrefix = "clubgate:scan_lock:"

	DefaultLockTTL   = 10 * time.Second
	defaultRetryWait = 25 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by another instance is never released by us.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// MemberLocker implements store.MemberLocker with SET NX PX.
type MemberLocker struct {
	client    goredis.UniversalClient
	ttl       time.Duration
	retryWait time.Duration
	logger    *slog.Logger
}

var _ store.MemberLocker = (*MemberLocker)(nil)

func NewMemberLocker(client goredis.UniversalClient, ttl time.Duration, logger *slog.Logger) *MemberLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemberLocker{
		client:    client,
		ttl:       ttl,
		retryWait: defaultRetryWait,
		logger:    logger,
	}
}

// buildKey builds the Redis key for a member lock.
// Format: clubgate:scan_lock:{member_id}
func (l *MemberLocker) buildKey(memberID string) string {
	return memberLockKeyPrefix + memberID
}

// Lock polls SET NX until it wins or ctx ends. The lock expires after the
// configured TTL even if the holder never releases it.
func (l *MemberLocker) Lock(ctx context.Context, memberID string) (func(), error) {
	key := l.buildKey(memberID)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryWait)
	defer ticker.Stop()

	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire member lock: %w", err)
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", store.ErrLockTimeout, ctx.Err())
		case <-ticker.C:
		}
	}

	return func() {
		// Release must succeed even when the scan's own deadline has passed.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("release member lock failed", "member_id", memberID, "error", err)
		}
	}, nil
}
