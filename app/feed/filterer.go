package feed

import (
	"strings"
)

// KeywordFilter matches text against a keyword list, case-insensitively and
// by substring.
type KeywordFilter struct {
	keywords []string
}

func NewKeywordFilter(keywords []string) *KeywordFilter {
	lowered := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
			lowered = append(lowered, keyword)
		}
	}
	return &KeywordFilter{keywords: lowered}
}

// Matches reports whether text contains at least one keyword.
func (f *KeywordFilter) Matches(text string) bool {
	return f.Match(text) != ""
}

// Match returns the first keyword found in text, or "".
func (f *KeywordFilter) Match(text string) string {
	lower := strings.ToLower(text)
	for _, keyword := range f.keywords {
		if strings.Contains(lower, keyword) {
			return keyword
		}
	}
	return ""
}
