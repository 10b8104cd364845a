package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/casebreak-service/internal/domain/dto"
	"github.com/guttosm/casebreak-service/internal/i18n"
	"github.com/guttosm/casebreak-service/internal/logger"
)

// Quota is the outcome of taking one request from a window.
type Quota struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// WindowCounter counts requests per key in fixed windows.
type WindowCounter interface {
	Take(ctx context.Context, key string, now time.Time) (Quota, error)
}

// RateLimiter turns a WindowCounter into gin middleware. A counter error lets
// the request through.
type RateLimiter struct {
	counter WindowCounter
	rate    int
	stop    func()
}

// NewRateLimiter keeps windows in process memory.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return NewShardedRateLimiter(rate, window, defaultNumShards)
}

// NewShardedRateLimiter is NewRateLimiter with an explicit shard count.
func NewShardedRateLimiter(rate int, window time.Duration, numShards int) *RateLimiter {
	mc := newMemoryCounter(rate, window, numShards)
	return &RateLimiter{counter: mc, rate: rate, stop: mc.stop}
}

// NewCounterRateLimiter uses counter, which must enforce rate itself.
func NewCounterRateLimiter(counter WindowCounter, rate int) *RateLimiter {
	return &RateLimiter{counter: counter, rate: rate, stop: func() {}}
}

// RateLimit limits requests per client IP.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return rl.handler(func(c *gin.Context) string { return "ip:" + c.ClientIP() })
}

// UserRateLimit limits requests per authenticated customer, falling back to
// the client IP for anonymous requests.
func (rl *RateLimiter) UserRateLimit() gin.HandlerFunc {
	return rl.handler(clientKey)
}

// Stop ends background cleanup, if the counter has any.
func (rl *RateLimiter) Stop() {
	rl.stop()
}

func (rl *RateLimiter) handler(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		q, err := rl.counter.Take(ctx, keyFn(c), time.Now())
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Msg("Rate limit counter unavailable, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(q.Remaining))
		if q.Allowed {
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(q.ResetIn)))
		message := i18n.GetTranslator().Translate(i18n.ErrKeyRateLimitExceeded, i18n.GetLocale(c))
		c.AbortWithStatusJSON(http.StatusTooManyRequests,
			dto.NewError(dto.ErrCodeRateLimit, message).WithRequestID(GetRequestID(c)))
	}
}

func retryAfterSeconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}

func clientKey(c *gin.Context) string {
	if id := UserID(c); id != "" {
		return "user:" + id
	}
	return "ip:" + c.ClientIP()
}
