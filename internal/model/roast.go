package model

import "time"

const (
	RoastTypeURL         = "url"
	RoastTypeDescription = "description"
	RoastTypeTweet       = "tweet"
)

const RoastPointCount = 5

// Roast 一次生成并持久化的吐槽结果，创建后不再修改
type Roast struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Title     string    `json:"title"`
	Points    []string  `json:"points"`
	Score     int       `json:"score"`
	Verdict   string    `json:"verdict"`
	CreatedAt time.Time `json:"created_at"`
}
