package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/atelierhub/atelier/config"
	"github.com/atelierhub/atelier/utils"
)

type ipLimiter struct {
	limiter *rate.Limiter
	expires time.Time
	mu      sync.Mutex
}

// limiterScope keeps an independent token bucket per client IP. Separate
// scopes let write-heavy routes carry tighter budgets than reads.
type limiterScope struct {
	limiters map[string]*ipLimiter
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
}

func newLimiterScope(perMinute int) *limiterScope {
	if perMinute < 1 {
		perMinute = 1
	}
	return &limiterScope{
		limiters: map[string]*ipLimiter{},
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    max(perMinute/2, 1),
	}
}

// RateLimitMiddleware applies the configured default per-IP budget.
func RateLimitMiddleware() gin.HandlerFunc {
	return RateLimit(config.Get().RateLimitPerMinute)
}

// RateLimit applies a per-IP token bucket with the given requests-per-minute
// budget. Each call owns its own limiter table.
func RateLimit(perMinute int) gin.HandlerFunc {
	scope := newLimiterScope(perMinute)

	return func(ctx *gin.Context) {
		limiter := scope.get(ctx.ClientIP())

		limiter.mu.Lock()
		allowed := limiter.limiter.Allow()
		limiter.mu.Unlock()

		if !allowed {
			utils.Error(ctx, 429, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

func (s *limiterScope) get(key string) *ipLimiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleanupExpiredLocked()

	if limiter, ok := s.limiters[key]; ok {
		limiter.expires = time.Now().Add(5 * time.Minute)
		return limiter
	}

	limiter := &ipLimiter{
		limiter: rate.NewLimiter(s.limit, s.burst),
		expires: time.Now().Add(5 * time.Minute),
	}
	s.limiters[key] = limiter
	return limiter
}

func (s *limiterScope) cleanupExpiredLocked() {
	now := time.Now()
	for key, limiter := range s.limiters {
		if now.After(limiter.expires) {
			delete(s.limiters, key)
		}
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
