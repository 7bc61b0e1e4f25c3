package dto

import "RoastMe/internal/pkg/util"

type LeaderboardEntryDTO struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Score int    `json:"score"`
}

// SocialProofDTO 今日数、总数、近期高分榜和热词
type SocialProofDTO struct {
	Today       int                    `json:"today"`
	AllTime     int                    `json:"allTime"`
	Leaderboard []*LeaderboardEntryDTO `json:"leaderboard"`
	Trending    []util.KeywordCount    `json:"trending"`
}
