package llm

import (
	"RoastMe/internal/model"
	"math"
	"strings"

	"github.com/goccy/go-json"
)

const (
	MinScore = 1
	MaxScore = 10
)

// Roast 模型或兜底生成器产出的吐槽内容，不含记录元信息
type Roast struct {
	Title   string   `json:"title"`
	Points  []string `json:"points"`
	Score   int      `json:"score"`
	Verdict string   `json:"verdict"`
}

// Clone 返回不共享 Points 的副本
func (r Roast) Clone() Roast {
	r.Points = append([]string(nil), r.Points...)
	return r
}

type rawRoast struct {
	Title   string   `json:"title"`
	Points  []string `json:"points"`
	Score   float64  `json:"score"`
	Verdict string   `json:"verdict"`
}

// DecodeRoast 从模型自由文本中提取吐槽 JSON。
// 去掉代码块围栏后取第一个完整的 {...} 对象；缺标题或不足 5 条要点视为解析失败。
func DecodeRoast(raw string) (Roast, bool) {
	obj := extractJSONObject(stripCodeFence(raw))
	if obj == "" {
		return Roast{}, false
	}

	var parsed rawRoast
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return Roast{}, false
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		return Roast{}, false
	}
	points := make([]string, 0, model.RoastPointCount)
	for _, p := range parsed.Points {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		points = append(points, p)
		if len(points) == model.RoastPointCount {
			break
		}
	}
	if len(points) < model.RoastPointCount {
		return Roast{}, false
	}

	return Roast{
		Title:   title,
		Points:  points,
		Score:   clampScore(int(math.Round(parsed.Score))),
		Verdict: strings.TrimSpace(parsed.Verdict),
	}, true
}

func clampScore(score int) int {
	return min(max(score, MinScore), MaxScore)
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// 去掉语言标记行，如 ```json
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// extractJSONObject 返回第一个括号配平的对象，字符串内的括号不计数
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
