package llm

import (
	"hash/fnv"
	"regexp"
)

// FallbackSource 兜底生成器在结果中的来源标识
const FallbackSource = "fallback"

const aiQuip = "AI in 2026? Revolutionary. Next you'll tell me you have a mobile app."

var aiMention = regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}])(ai|a\.i|artificial intelligence)($|[^\p{L}\p{N}])`)

var fallbackPool = []Roast{
	{
		Title: "Another 'Innovative' Solution to a Problem Nobody Has",
		Points: []string{
			"The tagline reads like it was written by a thesaurus on steroids",
			"I genuinely can't tell if this is a startup or an art project",
			"The 'revolutionary' feature is something Excel did in 1997",
			"Your hero section has more buzzwords than a tech conference keynote",
			"The pricing page is hidden so deep I'd need a map",
		},
		Score:   3,
		Verdict: "Bold of you to assume anyone needs this",
	},
	{
		Title: "Peak Startup Energy Detected",
		Points: []string{
			"The name sounds like an AI generated it (it probably did)",
			"Your 'About' page has more 'we're a family' energy than a cult",
			"The hero image is a stock photo of people pretending to work",
			"Five 'we're hiring' mentions - we get it, you're growing",
			"The CTA button says 'Get Started' which is the verbal equivalent of a shrug",
		},
		Score:   4,
		Verdict: "Solid 4/10 would not click again",
	},
	{
		Title: "Y2K Aesthetic, 2026 Problems",
		Points: []string{
			"The design screams 'our intern built this in WordPress'",
			"Your value proposition requires a 30-minute read to understand",
			"The loading animation is longer than most TED talks",
			"Mobile responsive in theory, usable in practice - never",
			"I found more typos than features",
		},
		Score:   2,
		Verdict: "This is what's killing the startup ecosystem",
	},
}

// Fallback 本地兜底生成，同一内容总是得到同一份模板，永不失败
func Fallback(content string) Roast {
	h := fnv.New32a()
	_, _ = h.Write([]byte(content))
	tpl := fallbackPool[h.Sum32()%uint32(len(fallbackPool))]
	return AdjustForKeywords(tpl, content)
}

// AdjustForKeywords 内容提到 AI 时替换第一条要点并扣一分，最低 1 分。总是返回副本
func AdjustForKeywords(tpl Roast, content string) Roast {
	out := tpl.Clone()
	if !MentionsAI(content) {
		return out
	}
	if len(out.Points) > 0 {
		out.Points[0] = aiQuip
	}
	out.Score = max(MinScore, out.Score-1)
	return out
}

// MentionsAI 按整词匹配 ai / a.i. / artificial intelligence，不区分大小写
func MentionsAI(content string) bool {
	return aiMention.MatchString(content)
}
