package api

import (
	"RoastMe/internal/api/handler"
	"RoastMe/internal/pkg/ratelimit"
)

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	RoastHandler     *handler.RoastHandler
	SocialHandler    *handler.SocialHandler
	SubscribeHandler *handler.SubscribeHandler
	PageHandler      *handler.PageHandler
	// RoastLimiter 仅作用于 POST /api/roast
	RoastLimiter ratelimit.Limiter
}
