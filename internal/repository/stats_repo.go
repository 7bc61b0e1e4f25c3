package repository

import (
	"RoastMe/internal/model"
	"RoastMe/internal/pkg/database"
	"context"
)

type StatsRepo interface {
	GetDailyStats(ctx context.Context) (model.DailyStats, error)
	Rollover(ctx context.Context) (bool, error)
}

type StatsRepoImpl struct {
	db *database.DB
}

func NewStatsRepo(db *database.DB) StatsRepo {
	return &StatsRepoImpl{db: db}
}

// GetDailyStats 只读，记录日期过期时返回当日 0 计数，但不改写存储
func (s *StatsRepoImpl) GetDailyStats(ctx context.Context) (model.DailyStats, error) {
	today := s.db.Now().Format(model.DailyStatsDateLayout)
	var stats model.DailyStats
	err := s.db.View(func(doc *database.Document) error {
		stats = model.DailyStats{Date: today, Count: doc.Stats.CountFor(today)}
		return nil
	})
	return stats, err
}

// Rollover 跨天时将存储的计数归零并落盘，返回是否发生了滚动
func (s *StatsRepoImpl) Rollover(ctx context.Context) (bool, error) {
	today := s.db.Now().Format(model.DailyStatsDateLayout)

	stale := false
	if err := s.db.View(func(doc *database.Document) error {
		stale = doc.Stats.Date != today
		return nil
	}); err != nil {
		return false, err
	}
	if !stale {
		return false, nil
	}

	if err := s.db.Update(func(doc *database.Document) error {
		doc.Stats.Rollover(today)
		return nil
	}); err != nil {
		return false, err
	}
	return true, nil
}
