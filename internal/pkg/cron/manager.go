package cron

import (
	"RoastMe/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

const (
	LimiterSweepSpec  = "@every 1m"
	StatsRolloverSpec = "0 0 0 * * *"
)

type Manager struct {
	engine           *cron.Cron
	limiterSweepJob  *job.LimiterSweepJob
	statsRolloverJob *job.StatsRolloverJob
}

// NewCronManager 为 nil 的任务不注册；Redis 限流由 TTL 过期，不需要清理任务
func NewCronManager(limiterSweepJob *job.LimiterSweepJob, statsRolloverJob *job.StatsRolloverJob) *Manager {
	return &Manager{
		engine:           cron.New(cron.WithSeconds()),
		limiterSweepJob:  limiterSweepJob,
		statsRolloverJob: statsRolloverJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if s.limiterSweepJob != nil {
		if _, err := s.engine.AddJob(LimiterSweepSpec, s.limiterSweepJob); err != nil {
			return err
		}
	}
	if s.statsRolloverJob != nil {
		if _, err := s.engine.AddJob(StatsRolloverSpec, s.statsRolloverJob); err != nil {
			return err
		}
	}
	return nil
}

// Entries 已注册的任务数
func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
