package util

import (
	"regexp"
	"sort"
	"strings"
)

var wordRegex = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}'+#.-]*`)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "how": {}, "i": {}, "in": {}, "into": {}, "is": {},
	"it": {}, "its": {}, "it's": {}, "my": {}, "of": {}, "on": {}, "or": {}, "our": {}, "so": {},
	"that": {}, "the": {}, "their": {}, "this": {}, "to": {}, "was": {}, "we": {}, "what": {},
	"which": {}, "who": {}, "will": {}, "with": {}, "you": {}, "your": {}, "app": {}, "just": {},
	"http": {}, "https": {}, "www": {}, "com": {},
}

// KeywordCount 关键词及出现次数
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// ExtractKeywords 提取小写、去重后的关键词，过滤停用词与过短的词
func ExtractKeywords(rawContent string) []string {
	matches := wordRegex.FindAllString(strings.ToLower(rawContent), -1)

	seen := make(map[string]struct{})
	var keywords []string
	for _, m := range matches {
		word := strings.Trim(m, ".,-'+#")
		if len([]rune(word)) < 3 {
			continue
		}
		if _, ok := stopWords[word]; ok {
			continue
		}
		if _, exists := seen[word]; exists {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	return keywords
}

// RankKeywords 统计多段文本中的关键词，按次数降序、同次数按字母序，最多返回 limit 个
func RankKeywords(contents []string, limit int) []KeywordCount {
	counts := make(map[string]int)
	for _, content := range contents {
		for _, kw := range ExtractKeywords(content) {
			counts[kw]++
		}
	}

	ranked := make([]KeywordCount, 0, len(counts))
	for kw, n := range counts {
		ranked = append(ranked, KeywordCount{Keyword: kw, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Keyword < ranked[j].Keyword
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// PtrString 用于将 string 转换为 *string，空串返回 nil
func PtrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
