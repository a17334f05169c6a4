package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CollapseSpace replaces every whitespace run with one space and trims.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripHTML returns the visible text of an HTML fragment with whitespace
// collapsed.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return CollapseSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CollapseSpace(s)
	}

	doc.Find("script, style").Remove()
	return CollapseSpace(doc.Text())
}

// Truncate cuts s to at most max runes and reports whether it did.
func Truncate(s string, max int) (string, bool) {
	if max < 0 {
		max = 0
	}
	if len(s) <= max {
		return s, false
	}

	runes := []rune(s)
	if len(runes) <= max {
		return s, false
	}
	return string(runes[:max]), true
}

// TruncateWithEllipsis cuts s to max runes and appends "..." when cut.
func TruncateWithEllipsis(s string, max int) string {
	if cut, truncated := Truncate(s, max); truncated {
		return cut + "..."
	}
	return s
}
