package main

import (
	"RoastMe/internal/api/config"
	"RoastMe/internal/pkg/cron"
	"RoastMe/internal/pkg/database"
	"RoastMe/internal/pkg/logger"
	"RoastMe/internal/pkg/redis"
	"RoastMe/internal/wire"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), config.Cfg)
		},
	}
}

func runServer(parent context.Context, cfg *config.Config) error {
	// 初始化日志
	logCloser, err := logger.InitLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	gin.SetMode(gin.ReleaseMode)

	// 数据文件
	db, err := database.Open(cfg.Storage.DataFile)
	if err != nil {
		log.Error("Fatal error: failed to open data file", "err", err)
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to release data file lock", "err", err)
		}
	}()

	// Redis 连接，未配置时使用进程内限流
	rdb, err := redis.InitRedis(cfg.Redis)
	if err != nil {
		log.Error("Fatal error: failed to create redis connection", "err", err)
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// 依赖注入
	app, err := wire.BuildApplication(ctx, db, rdb, cfg)
	if err != nil {
		log.Error("Fatal error: failed to create application", "err", err)
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	// 定时任务
	if err = cron.InitCron(app.CronManager); err != nil {
		log.Error("Fatal error: failed to start cron jobs", "err", err)
		return err
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Cron Jobs stopping...")
		app.CronManager.Stop()
		return nil
	})

	// HTTP 服务器
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.Info("HTTP Server starting...", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 优雅退出
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case <-ctx.Done():
		case sig := <-quit:
			log.Info("Received signal, shutting down...", "signal", sig.String())
			cancel()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP Server shutdown failed", "err", err)
		}
		return nil
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("App exited with error", "err", err)
		return err
	}
	log.Info("App exited successfully.")
	return nil
}
