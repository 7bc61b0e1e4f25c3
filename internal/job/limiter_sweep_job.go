package job

import (
	log "log/slog"
)

// Sweeper 可清理过期窗口的限流器，内存实现满足
type Sweeper interface {
	Sweep() int
	Len() int
}

// LimiterSweepJob 定期清理已过期的限流窗口，避免 map 随来访 IP 无限增长
type LimiterSweepJob struct {
	limiter Sweeper
}

func NewLimiterSweepJob(limiter Sweeper) *LimiterSweepJob {
	return &LimiterSweepJob{limiter: limiter}
}

func (s *LimiterSweepJob) Run() {
	removed := s.limiter.Sweep()
	if removed > 0 {
		log.Debug("limiter sweep finished", "removed", removed, "remaining", s.limiter.Len())
	}
}
