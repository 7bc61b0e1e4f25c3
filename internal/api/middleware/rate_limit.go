package middleware

import (
	"RoastMe/internal/pkg/consts"
	"RoastMe/internal/pkg/ratelimit"
	"RoastMe/internal/pkg/response"
	"RoastMe/internal/service"
	log "log/slog"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware 按客户端 IP 固定窗口限流，超限返回 429 和 Retry-After。
// 限流后端不可用时放行，只记录日志
func RateLimitMiddleware(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()

		decision, err := limiter.Allow(ctx, ip)
		if err != nil {
			log.WarnContext(ctx, "限流检查失败，放行请求", "client_ip", ip, "err", err)
			c.Next()
			return
		}

		c.Header(consts.HeaderRateLimitLimit, strconv.Itoa(decision.Limit))
		c.Header(consts.HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			retryAfter := max(1, int(math.Ceil(decision.RetryAfter.Seconds())))
			c.Header(consts.HeaderRetryAfter, strconv.Itoa(retryAfter))
			log.InfoContext(ctx, "请求被限流", "client_ip", ip, "retry_after", retryAfter)
			response.Error(c, service.ErrRateLimited)
			return
		}
		c.Next()
	}
}
