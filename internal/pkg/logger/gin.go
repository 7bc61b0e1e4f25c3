package logger

import (
	log "log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// accessSkipPaths 健康检查不写访问日志
var accessSkipPaths = []string{"/api/ping"}

const panicMessage = "unexpected error, try again later"

type accessLine struct {
	Time     string `json:"time"`
	Level    string `json:"level"`
	Msg      string `json:"msg"`
	TraceID  string `json:"trace_id,omitempty"`
	ClientIP string `json:"client_ip"`
	Method   string `json:"method"`
	Path     string `json:"path"`
	Status   int    `json:"status"`
	Bytes    int    `json:"bytes"`
	Latency  string `json:"latency"`
	Error    string `json:"error,omitempty"`
}

// SetupGin 挂载 JSON 访问日志与 panic 恢复，4xx 记为 WARN，5xx 记为 ERROR
func SetupGin(r *gin.Engine) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    LogWriter,
		SkipPaths: accessSkipPaths,
		Formatter: formatAccess,
	}))

	r.Use(gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "panic recovered",
			"path", c.Request.URL.Path, "panic", recovered, "stack", string(debug.Stack()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": panicMessage})
	}))
}

func formatAccess(p gin.LogFormatterParams) string {
	line := accessLine{
		Time:     p.TimeStamp.Format(time.RFC3339),
		Level:    accessLevel(p.StatusCode),
		Msg:      "GIN_ACCESS",
		TraceID:  accessTraceID(p),
		ClientIP: p.ClientIP,
		Method:   p.Method,
		Path:     p.Path,
		Status:   p.StatusCode,
		Bytes:    p.BodySize,
		Latency:  p.Latency.String(),
		Error:    p.ErrorMessage,
	}
	data, err := json.Marshal(line)
	if err != nil {
		return ""
	}
	return string(data) + "\n"
}

func accessLevel(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "ERROR"
	case status >= http.StatusBadRequest:
		return "WARN"
	default:
		return "INFO"
	}
}

func accessTraceID(p gin.LogFormatterParams) string {
	if p.Keys != nil {
		if id, ok := p.Keys[TraceIDKey].(string); ok && id != "" {
			return id
		}
	}
	if p.Request != nil {
		return TraceID(p.Request.Context())
	}
	return ""
}
