package api

import (
	"RoastMe/internal/api/config"
	"RoastMe/internal/api/middleware"
	"RoastMe/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, server config.ServerConfig) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(server.TrustedProxies)

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware(server.AllowedOrigins))
	logger.SetupGin(r)

	r.GET("/", group.PageHandler.Index)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})

		apiGroup.POST("/roast", middleware.RateLimitMiddleware(group.RoastLimiter), group.RoastHandler.GenerateRoast)
		apiGroup.GET("/roast/:id", group.RoastHandler.GetRoast)
		apiGroup.GET("/roasts", group.RoastHandler.GetRecentRoasts)

		apiGroup.GET("/social", group.SocialHandler.GetSocialProof)
		apiGroup.GET("/trending", group.SocialHandler.GetTrending)

		apiGroup.POST("/subscribe", group.SubscribeHandler.Subscribe)
		apiGroup.GET("/referrals/:code", group.SubscribeHandler.GetReferralStats)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
