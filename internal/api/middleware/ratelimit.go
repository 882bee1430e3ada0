package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/estate_go_server/internal/pkg/ratelimit"
	"github.com/qs3c/estate_go_server/internal/pkg/response"
)

// RateLimit 按用户的滑动窗口限流（Redis ZSET）。
// Redis 不可用时放行请求，限流失效好过接口全挂。
func RateLimit(limiter *ratelimit.Limiter, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			// 未登录请求按客户端 IP 限
			allowed, err := limiter.Allow(c.Request.Context(), fmt.Sprintf("%s:ip:%s", name, c.ClientIP()), limit, window)
			if err != nil {
				log.Printf("ratelimit: %s check failed: %v", name, err)
				c.Next()
				return
			}
			if !allowed {
				response.RateLimitError(c, "")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), fmt.Sprintf("%s:user:%d", name, userID), limit, window)
		if err != nil {
			log.Printf("ratelimit: %s check failed: %v", name, err)
			c.Next()
			return
		}
		if !allowed {
			response.RateLimitError(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}
