package middleware

import (
	"fmt"
	"math"
	"time"

	"recipe-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter 每個用戶端（使用者或 IP）各自一個令牌桶
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	window   time.Duration
	limiters *cache.Cache
}

// NewRateLimiter 創建新的限流器：每個 window 補充 requests 個令牌，可瞬間使用 burst 個
func NewRateLimiter(requests int, window time.Duration, burst int) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if burst <= 0 {
		burst = 1
	}
	// 閒置超過幾個週期的用戶端會被清除
	idle := 10 * window
	return &RateLimiter{
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    burst,
		window:   window,
		limiters: cache.New(idle, idle),
	}
}

// Allow 檢查是否允許請求，回傳需等待的時間
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	limiter := rl.get(key)
	r := limiter.Reserve()
	if !r.OK() {
		return false, rl.window
	}
	delay := r.Delay()
	if delay > 0 {
		r.Cancel()
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	if v, ok := rl.limiters.Get(key); ok {
		rl.limiters.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	if err := rl.limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
		// 其他請求已先建立
		if v, ok := rl.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// RateLimit 限流中間件，已識別的使用者以 user id 計算，否則以 IP 計算
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID := UserID(c); userID != "" {
			key = "user:" + userID
		}

		if ok, wait := limiter.Allow(key); !ok {
			common.LogInfo("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", c.Request.URL.Path),
				zap.Duration("retry_after", wait),
			)

			retry := int(math.Ceil(wait.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retry))
			common.WriteError(c, common.ErrTooManyRequests.WithDetails(gin.H{"retry_after": retry}))
			return
		}

		c.Next()
	}
}
