package cron

import (
	"errors"
	"fmt"
	log "log/slog"
)

var ErrNoJobs = errors.New("no cron jobs registered")

// InitCron 注册并启动定时任务；一个任务都没有注册时不启动引擎
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return fmt.Errorf("register cron jobs: %w", err)
	}
	entries := mgr.Entries()
	if entries == 0 {
		return ErrNoJobs
	}
	mgr.Start()
	log.Info("Cron jobs started", "entries", entries, "limiter_sweep", mgr.limiterSweepJob != nil)
	return nil
}
