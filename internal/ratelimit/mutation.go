package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallgrid/enerbill/internal/config"
)

const keyMutation = "enerbill:mutation:%s"

// MutationLimiter throttles write endpoints per client. Disabled (all
// requests allowed) when no redis address is configured.
type MutationLimiter struct {
	enabled bool
	bucket  *TokenBucket
	rate    float64
	burst   int
}

func NewMutationLimiter(cfg config.Config) *MutationLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &MutationLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &MutationLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    float64(cfg.RateLimitPerSecond),
		burst:   cfg.RateLimitBurst,
	}
}

func (l *MutationLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow consumes one token for the client key. Fail-open on redis
// errors so a cache outage never blocks writes.
func (l *MutationLimiter) Allow(ctx context.Context, clientKey string) (bool, time.Duration) {
	if !l.Enabled() {
		return true, 0
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyMutation, strings.TrimSpace(clientKey)), l.rate, l.burst)
	if err != nil {
		return true, 0
	}
	return res.Allowed, res.RetryAfter
}
