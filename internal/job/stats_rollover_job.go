package job

import (
	"RoastMe/internal/repository"
	"context"
	log "log/slog"
	"time"
)

// StatsRolloverJob 零点把每日计数归零落盘，无请求的日子文件中的日期也保持最新
type StatsRolloverJob struct {
	statsRepo repository.StatsRepo
}

func NewStatsRolloverJob(statsRepo repository.StatsRepo) *StatsRolloverJob {
	return &StatsRolloverJob{statsRepo: statsRepo}
}

func (s *StatsRolloverJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rolled, err := s.statsRepo.Rollover(ctx)
	if err != nil {
		log.Error("daily stats rollover failed", "err", err)
		return
	}
	if rolled {
		log.Info("daily stats rolled over")
	}
}
