package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiter limits requests per client IP to perMinute. Counters live in
// Redis when client is set so every instance shares them, else in memory.
func RateLimiter(perMinute int, client *redis.Client) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  int64(perMinute),
	}

	// 📊 Counter store
	var store limiter.Store = memory.NewStore()
	if client != nil {
		rs, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix: "calendar:ratelimit",
		})
		if err != nil {
			log.Printf("⚠️ Redis rate limit store unavailable, using memory: %v", err)
		} else {
			store = rs
		}
	}

	instance := limiter.New(store, rate)

	// 🚦 Gin-compatible middleware
	return ginlimiter.NewMiddleware(instance)
}
