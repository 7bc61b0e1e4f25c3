package logger

import (
	"RoastMe/internal/api/config"
	"fmt"
	"io"
	log "log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

var LogWriter io.Writer = os.Stdout

// InitLogger 标准输出 JSON 日志，配置了 log.file 时同时写入文件
func InitLogger(cfg config.LogConfig) (io.Closer, error) {
	level := parseLevel(cfg.Level)
	opts := &log.HandlerOptions{Level: level}

	handlers := []log.Handler{log.NewJSONHandler(os.Stdout, opts)}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, log.NewJSONHandler(file, opts))
		LogWriter = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	logger := log.New(&ContextHandler{slogmulti.Fanout(handlers...)})
	log.SetDefault(logger)
	return closer, nil
}

func parseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
