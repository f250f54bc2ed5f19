package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"spot_difference/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitWindow = time.Minute

// RateLimiter - ограничение запросов с одного IP в минуту, счётчики в Redis.
// Без Redis ограничение выключено.
type RateLimiter struct {
	rdb   *redis.Client
	limit int
}

func NewRateLimiter(rdb *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: perMinute}
}

func rateKey(ip string, now time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%d", ip, now.Unix()/int64(rateLimitWindow.Seconds()))
}

// Allow увеличивает счётчик окна и сообщает, укладывается ли запрос в лимит
func (l *RateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	if l == nil || l.rdb == nil || l.limit <= 0 {
		return true, nil
	}

	key := rateKey(ip, time.Now())
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
			return true, err
		}
	}
	return n <= int64(l.limit), nil
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Redis недоступен - пропускаем запрос
			logger.WithContext(c.Request.Context()).Warn("rate limiter unavailable", "error", err)
		}
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
