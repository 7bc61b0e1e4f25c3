package model

const DailyStatsDateLayout = "2006-01-02"

// DailyStats 当日生成计数，日期变化时先归零再累加
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Advance 按 today 滚动日期后计数加一
func (s *DailyStats) Advance(today string) {
	s.Rollover(today)
	s.Count++
}

// Rollover 日期不一致时重置计数
func (s *DailyStats) Rollover(today string) {
	if s.Date != today {
		s.Date = today
		s.Count = 0
	}
}

// CountFor 只读地返回 today 的计数，不修改记录
func (s DailyStats) CountFor(today string) int {
	if s.Date != today {
		return 0
	}
	return s.Count
}
