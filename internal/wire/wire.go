package wire

import (
	"RoastMe/internal/api"
	"RoastMe/internal/api/config"
	"RoastMe/internal/api/handler"
	"RoastMe/internal/job"
	"RoastMe/internal/pkg/cron"
	"RoastMe/internal/pkg/database"
	"RoastMe/internal/pkg/fetcher"
	"RoastMe/internal/pkg/llm"
	"RoastMe/internal/pkg/ratelimit"
	"RoastMe/internal/repository"
	"RoastMe/internal/service"
	"context"
	log "log/slog"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router      *gin.Engine
	DB          *database.DB
	CronManager *cron.Manager
}

// BuildApplication rdb 为 nil 时使用进程内限流
func BuildApplication(ctx context.Context, db *database.DB, rdb *redisv9.Client, cfg *config.Config) (*ApplicationContainer, error) {
	roastRepo := repository.NewRoastRepo(db)
	subscriberRepo := repository.NewSubscriberRepo(db)
	statsRepo := repository.NewStatsRepo(db)

	prompts, err := llm.NewPrompts(cfg.LLM.PromptsPath)
	if err != nil {
		return nil, err
	}
	providers, err := llm.NewProviders(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	chain := llm.NewChain(providers, prompts, cfg.LLM)

	var snapshotter service.PageSnapshotter
	if cfg.Fetcher.Enabled {
		snapshotter = fetcher.NewFetcher(cfg.Fetcher)
	}

	socialService := service.NewSocialService(roastRepo, statsRepo)
	roastService := service.NewRoastService(roastRepo, subscriberRepo, socialService, chain, snapshotter)
	subscribeService := service.NewSubscribeService(subscriberRepo)

	var limiter ratelimit.Limiter
	var sweepJob *job.LimiterSweepJob
	if rdb != nil {
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, "")
		log.Info("限流后端: redis")
	} else {
		memLimiter := ratelimit.NewMemoryLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		limiter = memLimiter
		sweepJob = job.NewLimiterSweepJob(memLimiter)
		log.Info("限流后端: memory")
	}

	handlers := &api.HandlersGroup{
		RoastHandler:     handler.NewRoastHandler(roastService),
		SocialHandler:    handler.NewSocialHandler(socialService),
		SubscribeHandler: handler.NewSubscribeHandler(subscribeService),
		PageHandler:      handler.NewPageHandler(),
		RoastLimiter:     limiter,
	}

	router := api.SetupRouter(handlers, cfg.Server)
	cronMgr := cron.NewCronManager(sweepJob, job.NewStatsRolloverJob(statsRepo))

	return &ApplicationContainer{
		Router:      router,
		DB:          db,
		CronManager: cronMgr,
	}, nil
}
