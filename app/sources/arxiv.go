package sources

import (
	"cmp"
	"context"
	"fmt"
	"strings"

	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/fetch"
	"github.com/lysyi3m/news-comb/app/registry"
)

const (
	maxAbstractLength = 500
	maxPaperAuthors   = 5
	allCategories     = "All AI Categories"
	noPapersMessage   = "No papers found. Try a broader search term."
)

type ArxivSource struct {
	fetcher  Fetcher
	registry *registry.Registry
}

func NewArxivSource(fetcher Fetcher, reg *registry.Registry) *ArxivSource {
	return &ArxivSource{
		fetcher:  fetcher,
		registry: reg,
	}
}

// Search queries arXiv restricted to one category, or to every registered
// category when none is given.
func (s *ArxivSource) Search(ctx context.Context, p PaperParams) (*PaperResult, error) {
	if p.Category != "" && !s.registry.HasCategory(p.Category) {
		return nil, invalidInput("unknown category '%s'. Valid options: %s",
			p.Category, strings.Join(s.registry.CategoryCodes(), ", "))
	}

	sortBy := p.SortBy
	switch sortBy {
	case "", SortNewest:
		sortBy = SortSubmittedDate
	}

	body, err := s.fetcher.FetchText(ctx, s.registry.Endpoints().Arxiv, fetch.Params{
		"search_query": s.searchQuery(p.Category, p.Query),
		"start":        0,
		"max_results":  p.MaxResults,
		"sortBy":       sortBy,
		"sortOrder":    "descending",
	})
	if err != nil {
		return nil, err
	}

	doc, err := feed.DecodeXML(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode arXiv response: %w", err)
	}

	result := &PaperResult{
		Query:          p.Query,
		CategoryFilter: cmp.Or(p.Category, allCategories),
		SortBy:         sortBy,
		Papers:         []PaperItem{},
	}

	entries := feed.AsList(doc.Path("feed", "entry"))
	if len(entries) == 0 {
		result.Message = noPapersMessage
		return result, nil
	}

	for _, entry := range entries {
		result.Papers = append(result.Papers, paperOf(entry))
	}
	result.Count = len(result.Papers)

	return result, nil
}

func (s *ArxivSource) searchQuery(category, query string) string {
	if category != "" {
		return fmt.Sprintf("cat:%s AND %s", category, query)
	}

	codes := s.registry.CategoryCodes()
	clauses := make([]string, 0, len(codes))
	for _, code := range codes {
		clauses = append(clauses, "cat:"+code)
	}
	return fmt.Sprintf("(%s) AND %s", strings.Join(clauses, " OR "), query)
}

func paperOf(entry *feed.Value) PaperItem {
	authors := []string{}
	for _, author := range feed.AsList(entry.Field("author")) {
		if len(authors) == maxPaperAuthors {
			break
		}
		if name := feed.CollapseSpace(author.Field("name").String()); name != "" {
			authors = append(authors, name)
		}
	}

	categories := []string{}
	for _, category := range feed.AsList(entry.Field("category")) {
		if term := category.Attr("term"); term != "" {
			categories = append(categories, term)
		}
	}

	id := strings.TrimSpace(entry.Field("id").String())
	links := feed.Links(entry.Field("link"))

	pdfURL := strings.Replace(id, "/abs/", "/pdf/", 1)
	if link, ok := feed.FindLink(links, feed.IsPDF); ok {
		pdfURL = link.Href
	}

	absURL := id
	if link, ok := feed.FindLink(links, feed.IsPage); ok {
		absURL = link.Href
	}

	return PaperItem{
		Title:         feed.CollapseSpace(entry.Field("title").String()),
		Authors:       authors,
		Abstract:      feed.TruncateWithEllipsis(feed.CollapseSpace(entry.Field("summary").String()), maxAbstractLength),
		Categories:    categories,
		PublishedDate: cmp.Or(strings.TrimSpace(entry.Field("published").String()), "Unknown"),
		ArxivURL:      absURL,
		PDFURL:        pdfURL,
	}
}
