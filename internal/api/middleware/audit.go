package middleware

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	maxAuditBody   = 4096
	maxRequestBody = 1 << 20
)

// 订阅与吐槽接口会带邮箱，日志里只保留首字母和域名
var emailPattern = regexp.MustCompile(`([A-Za-z0-9._%+-])[A-Za-z0-9._%+-]*@([A-Za-z0-9.-]+\.[A-Za-z]{2,})`)

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *responseBodyWriter) Write(b []byte) (int, error) {
	if r.body.Len() < maxAuditBody {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseBodyWriter) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// AuditMiddleware 记录 /api 请求与响应。邮箱打码；成功的 GET 只记状态，不记列表正文
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		var reqBody []byte
		if c.Request.Body != nil {
			reqBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody))
			c.Request.Body = io.NopCloser(bytes.NewBuffer(reqBody))
		}

		log.InfoContext(ctx, "Recv Request",
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.String("client_ip", c.ClientIP()),
			log.String("req_body", auditBody(reqBody)),
		)

		w := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w
		startTime := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			log.Int("status", status),
			log.Duration("latency", time.Since(startTime)),
		}
		if c.Request.Method != http.MethodGet || status >= http.StatusBadRequest {
			attrs = append(attrs, log.String("res_body", auditBody(w.body.Bytes())))
		}
		log.InfoContext(ctx, "Send Response", attrs...)
	}
}

// auditBody 截断并给邮箱打码
func auditBody(b []byte) string {
	s := string(b)
	truncated := false
	if len(s) > maxAuditBody {
		s = s[:maxAuditBody]
		truncated = true
	}
	s = emailPattern.ReplaceAllString(s, "$1***@$2")
	if truncated {
		s += "...(truncated)"
	}
	return s
}
