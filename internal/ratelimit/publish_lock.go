package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/foliopress/foliopress/internal/config"
)

const (
	keyPublishLock = "publish:lock:%s"
	keyStatusPoll  = "status:poll:%s"

	publishLockTTL = 2 * time.Minute

	// the activation watcher polls every 3s; one token per second with a
	// small burst is generous headroom for a well-behaved client
	statusPollRate  = 1.0
	statusPollBurst = 5
)

// PublishLimiter serializes publish attempts per fingerprint and throttles
// status polling. Without redis configured it degrades to a no-op: quota
// limits still hold, only the concurrent-publish window identified in the
// quota read-then-write sequence reopens.
type PublishLimiter struct {
	enabled bool
	locker  *Locker
	bucket  *TokenBucket
}

func NewPublishLimiter(cfg config.Config) *PublishLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &PublishLimiter{
		enabled: true,
		locker:  NewLocker(client),
		bucket:  NewTokenBucket(client),
	}
}

func (l *PublishLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *PublishLimiter) TryLockPublish(ctx context.Context, fingerprint string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	key := fmt.Sprintf(keyPublishLock, strings.TrimSpace(fingerprint))
	return l.locker.TryLock(ctx, key, publishLockTTL)
}

func (l *PublishLimiter) ReleasePublish(ctx context.Context, fingerprint, token string) error {
	if !l.Enabled() {
		return nil
	}
	key := fmt.Sprintf(keyPublishLock, strings.TrimSpace(fingerprint))
	return l.locker.Release(ctx, key, token)
}

func (l *PublishLimiter) AllowStatusPoll(ctx context.Context, clientKey string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	key := fmt.Sprintf(keyStatusPoll, strings.TrimSpace(clientKey))
	return l.bucket.Allow(ctx, key, statusPollRate, statusPollBurst)
}
