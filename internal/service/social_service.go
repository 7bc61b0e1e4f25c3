package service

import (
	"RoastMe/internal/api/dto"
	"RoastMe/internal/pkg/util"
	"RoastMe/internal/repository"
	"context"
	log "log/slog"
	"sort"
)

const (
	LeaderboardWindow = 100
	LeaderboardSize   = 5
	TrendingWindow    = 50
	TrendingSize      = 10
)

type SocialService interface {
	GetSocialProof(ctx context.Context) (*dto.SocialProofDTO, error)
	GetTrending(ctx context.Context) ([]util.KeywordCount, error)
}

type SocialServiceImpl struct {
	roastRepo repository.RoastRepo
	statsRepo repository.StatsRepo
}

func NewSocialService(roastRepo repository.RoastRepo, statsRepo repository.StatsRepo) SocialService {
	return &SocialServiceImpl{roastRepo: roastRepo, statsRepo: statsRepo}
}

// GetSocialProof 只读，不会推进当日计数
func (s *SocialServiceImpl) GetSocialProof(ctx context.Context) (*dto.SocialProofDTO, error) {
	stats, err := s.statsRepo.GetDailyStats(ctx)
	if err != nil {
		log.ErrorContext(ctx, "读取每日统计失败", "err", err)
		return nil, UnExpectedError
	}
	allTime, err := s.roastRepo.CountRoasts(ctx)
	if err != nil {
		log.ErrorContext(ctx, "统计吐槽总数失败", "err", err)
		return nil, UnExpectedError
	}
	leaderboard, err := s.getLeaderboard(ctx)
	if err != nil {
		return nil, err
	}
	trending, err := s.GetTrending(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.SocialProofDTO{
		Today:       stats.Count,
		AllTime:     allTime,
		Leaderboard: leaderboard,
		Trending:    trending,
	}, nil
}

// GetTrending 最近 50 条内容的前 10 个关键词
func (s *SocialServiceImpl) GetTrending(ctx context.Context) ([]util.KeywordCount, error) {
	roasts, err := s.roastRepo.GetRecentRoasts(ctx, TrendingWindow)
	if err != nil {
		log.ErrorContext(ctx, "读取最近吐槽失败", "err", err)
		return nil, UnExpectedError
	}
	contents := make([]string, 0, len(roasts))
	for _, r := range roasts {
		contents = append(contents, r.Content)
	}
	return util.RankKeywords(contents, TrendingSize), nil
}

// getLeaderboard 最近 100 条中得分最高的 5 条，同分时较新的在前
func (s *SocialServiceImpl) getLeaderboard(ctx context.Context) ([]*dto.LeaderboardEntryDTO, error) {
	roasts, err := s.roastRepo.GetRecentRoasts(ctx, LeaderboardWindow)
	if err != nil {
		log.ErrorContext(ctx, "读取最近吐槽失败", "err", err)
		return nil, UnExpectedError
	}
	sort.SliceStable(roasts, func(i, j int) bool {
		return roasts[i].Score > roasts[j].Score
	})
	if len(roasts) > LeaderboardSize {
		roasts = roasts[:LeaderboardSize]
	}
	entries := make([]*dto.LeaderboardEntryDTO, 0, len(roasts))
	for _, r := range roasts {
		entries = append(entries, &dto.LeaderboardEntryDTO{
			ID:    r.ID,
			Type:  r.Type,
			Title: r.Title,
			Score: r.Score,
		})
	}
	return entries, nil
}
