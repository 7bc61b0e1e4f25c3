package middleware

import (
	"RoastMe/internal/pkg/consts"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods = "POST, GET, OPTIONS"
	corsAllowHeaders = "Origin, Content-Type, Accept, " + TraceHeader
)

var corsExposeHeaders = strings.Join([]string{
	consts.HeaderRetryAfter,
	consts.HeaderRateLimitLimit,
	consts.HeaderRateLimitRemaining,
	TraceHeader,
}, ", ")

// CORSMiddleware 处理跨域请求。allowedOrigins 为空时允许任意来源；
// 非空时只回显名单内的 Origin，名单外的预检请求返回 403
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed = append(allowed, strings.TrimRight(strings.TrimSpace(o), "/"))
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		permitted := origin != "" && (allowAll || slices.Contains(allowed, origin))

		if origin != "" {
			c.Header("Vary", "Origin")
		}
		if permitted {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Expose-Headers", corsExposeHeaders)
			c.Header("Access-Control-Max-Age", "600")
		}

		if c.Request.Method == http.MethodOptions {
			if origin != "" && !permitted {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
