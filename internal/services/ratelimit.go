package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rateWindow = time.Minute

// RateLimiter blocks until another LLM call may start.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WindowLimiter allows at most maxRPM calls in any sliding minute and keeps
// baseDelay between consecutive calls.
type WindowLimiter struct {
	mu        sync.Mutex
	maxRPM    int
	baseDelay time.Duration
	calls     []time.Time
	last      time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func NewWindowLimiter(maxRPM int, baseDelay time.Duration) *WindowLimiter {
	return &WindowLimiter{
		maxRPM:    maxRPM,
		baseDelay: baseDelay,
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

func (l *WindowLimiter) Wait(ctx context.Context) error {
	for {
		wait := l.reserve()
		if wait <= 0 {
			return nil
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// reserve records a call and returns 0, or returns how long to wait before
// trying again.
func (l *WindowLimiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	kept := l.calls[:0]
	for _, t := range l.calls {
		if now.Sub(t) < rateWindow {
			kept = append(kept, t)
		}
	}
	l.calls = kept

	var wait time.Duration
	if !l.last.IsZero() {
		wait = l.baseDelay - now.Sub(l.last)
	}
	if l.maxRPM > 0 && len(l.calls) >= l.maxRPM {
		if w := l.calls[0].Add(rateWindow).Sub(now); w > wait {
			wait = w
		}
	}
	if wait > 0 {
		return wait
	}

	l.calls = append(l.calls, now)
	l.last = now
	return 0
}

// counterStore is the part of a redis client the shared limiter needs.
type counterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisLimiter shares the per-minute budget between processes through a
// fixed-window counter in redis. The base delay is enforced per process.
type RedisLimiter struct {
	store  counterStore
	prefix string
	maxRPM int
	local  *WindowLimiter
	logger *zap.Logger

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func NewRedisRateLimiter(store counterStore, maxRPM int, baseDelay time.Duration, logger *zap.Logger) *RedisLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{
		store:  store,
		prefix: "resume-screener:llm:rpm:",
		maxRPM: maxRPM,
		local:  NewWindowLimiter(0, baseDelay),
		logger: logger,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func (l *RedisLimiter) Wait(ctx context.Context) error {
	if err := l.local.Wait(ctx); err != nil {
		return err
	}
	if l.maxRPM <= 0 {
		return nil
	}

	for {
		now := l.now().UTC()
		bucket := now.Truncate(rateWindow)
		key := l.prefix + bucket.Format("200601021504")

		n, err := l.store.Incr(ctx, key).Result()
		if err != nil {
			l.logger.Warn("redis rate limiter unavailable, continuing", zap.Error(err))
			return nil
		}
		if n == 1 {
			if err := l.store.Expire(ctx, key, rateWindow+time.Second).Err(); err != nil {
				l.logger.Debug("set rate window expiry", zap.Error(err))
			}
		}
		if int(n) <= l.maxRPM {
			return nil
		}

		wait := bucket.Add(rateWindow).Sub(now)
		l.logger.Debug("llm rate limit reached, waiting", zap.Duration("wait", wait))
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}
