// Package aggregator composes several source adapters into one dashboard.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/news-comb/app/registry"
	"github.com/lysyi3m/news-comb/app/sources"
	"github.com/lysyi3m/news-comb/app/tasks"
)

const (
	// DashboardPaperQuery broadens the paper search beyond the default query.
	DashboardPaperQuery = "large language model OR diffusion OR transformer"
	generatedAtFormat   = "2006-01-02 15:04:05"
)

type PaperSearcher interface {
	Search(ctx context.Context, p sources.PaperParams) (*sources.PaperResult, error)
}

type StoryRanker interface {
	Top(ctx context.Context, p sources.StoryParams) (*sources.StoryResult, error)
}

type NewsReader interface {
	News(ctx context.Context, p sources.NewsParams) (*sources.NewsResult, error)
}

var (
	_ PaperSearcher = (*sources.ArxivSource)(nil)
	_ StoryRanker   = (*sources.HackerNewsSource)(nil)
	_ NewsReader    = (*sources.FeedSource)(nil)
)

// Summary holds only the categories that were requested and succeeded.
type Summary struct {
	Papers     *sources.PaperResult `json:"papers,omitempty"`
	HackerNews *sources.StoryResult `json:"hackernews,omitempty"`
	News       *sources.NewsResult  `json:"news,omitempty"`
}

type Result struct {
	GeneratedAt string  `json:"generated_at"`
	Summary     Summary `json:"summary"`
}

type Dashboard struct {
	papers  PaperSearcher
	stories StoryRanker
	news    NewsReader
	now     func() time.Time
}

type Option func(*Dashboard)

// WithClock replaces the clock used for generated_at.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

func NewDashboard(papers PaperSearcher, stories StoryRanker, news NewsReader, opts ...Option) *Dashboard {
	d := &Dashboard{
		papers:  papers,
		stories: stories,
		news:    news,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Build runs every included category concurrently. A failing category is
// left out of the summary; it never fails the dashboard.
func (d *Dashboard) Build(ctx context.Context, p sources.DashboardParams) *Result {
	start := time.Now()

	var (
		summary    Summary
		categories []string
		branches   []func(context.Context) (struct{}, error)
	)

	if p.IncludePapers {
		categories = append(categories, "papers")
		branches = append(branches, func(ctx context.Context) (struct{}, error) {
			result, err := d.papers.Search(ctx, sources.PaperParams{
				Query:      DashboardPaperQuery,
				MaxResults: p.MaxItemsEach,
				SortBy:     sources.SortSubmittedDate,
			})
			summary.Papers = result
			return struct{}{}, err
		})
	}

	if p.IncludeHN {
		categories = append(categories, "hackernews")
		branches = append(branches, func(ctx context.Context) (struct{}, error) {
			result, err := d.stories.Top(ctx, sources.StoryParams{
				MaxResults: p.MaxItemsEach,
				FilterAI:   true,
			})
			summary.HackerNews = result
			return struct{}{}, err
		})
	}

	if p.IncludeNews {
		categories = append(categories, "news")
		branches = append(branches, func(ctx context.Context) (struct{}, error) {
			result, err := d.news.News(ctx, sources.NewsParams{
				Source:     registry.AllFeeds,
				MaxResults: p.MaxItemsEach,
			})
			summary.News = result
			return struct{}{}, err
		})
	}

	outcomes := tasks.Settle(ctx, 0, branches...)

	for i, outcome := range outcomes {
		if outcome.OK() {
			continue
		}

		slog.Warn("Dashboard category failed", "category", categories[i], "error", outcome.Err)
		switch categories[i] {
		case "papers":
			summary.Papers = nil
		case "hackernews":
			summary.HackerNews = nil
		case "news":
			summary.News = nil
		}
	}

	slog.Info("Dashboard built",
		"categories", len(categories),
		"failed", tasks.Failures(outcomes),
		"duration", time.Since(start))

	return &Result{
		GeneratedAt: d.now().UTC().Format(generatedAtFormat) + " UTC",
		Summary:     summary,
	}
}
