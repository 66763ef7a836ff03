package middleware

import (
	"fmt"
	"net/http"

	"staff-absence-backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitPrefix = "staff-absence:ratelimit"

// NewMemoryStore keeps rate limit counters in process
func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix})
}

// NewRedisStore shares rate limit counters between replicas
func NewRedisStore(client *redis.Client) (limiter.Store, error) {
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitPrefix})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}
	return store, nil
}

// RateLimit limits requests per client IP. rate uses the limiter format,
// for example "300-M" for 300 requests per minute.
func RateLimit(rate string, store limiter.Store) (gin.HandlerFunc, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	return mgin.NewMiddleware(limiter.New(store, parsed),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			logger.WithContext(c.Request.Context()).WithField("client_ip", c.ClientIP()).Warn("Rate limit reached")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// store errors fail open
			logger.WithContext(c.Request.Context()).WithError(err).Error("Rate limiter store error")
			c.Next()
		}),
	), nil
}
