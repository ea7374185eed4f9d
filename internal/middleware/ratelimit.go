package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"acquisitions/internal/logutil"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether another request from key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit answers 429 once the client exceeds the limiter's budget. Limiter
// failures let the request through.
func RateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log := logutil.GetOrDefault(c.Request.Context())
			log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests"})
			return
		}
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-process token bucket per key
type MemoryLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
}

// NewMemoryLimiter allows requests per window for each key, with the whole
// budget available as a burst.
func NewMemoryLimiter(requests int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Every(window / time.Duration(requests)),
		burst:     requests,
		window:    window,
		lastSweep: time.Now(),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if now.Sub(m.lastSweep) > m.window {
		for k, v := range m.visitors {
			if now.Sub(v.lastSeen) > m.window {
				delete(m.visitors, k)
			}
		}
		m.lastSweep = now
	}

	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1), nil
}

// RedisLimiter is a fixed-window counter shared by every instance using the
// same Redis.
type RedisLimiter struct {
	client   redis.Cmdable
	requests int64
	window   time.Duration
	prefix   string
}

func NewRedisLimiter(client redis.Cmdable, requests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, requests: int64(requests), window: window, prefix: "ratelimit:auth:"}
}

func (r *RedisLimiter) bucket(key string, now time.Time) string {
	return fmt.Sprintf("%s%s:%d", r.prefix, key, now.UnixNano()/int64(r.window))
}

// Allow counts the hit and (re)arms the bucket TTL in one MULTI, so a bucket
// never outlives its window by more than one window.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := r.bucket(key, time.Now())
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, bucket)
		pipe.Expire(ctx, bucket, r.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit count: %w", err)
	}
	return incr.Val() <= r.requests, nil
}
