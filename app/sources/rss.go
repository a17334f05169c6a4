package sources

import (
	"cmp"
	"context"
	"log/slog"
	"strings"

	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/registry"
	"github.com/lysyi3m/news-comb/app/tasks"
)

const (
	maxSummaryLength = 300
	noNewsMessage    = "No news items found. The feeds may be temporarily unavailable."
)

type FeedSource struct {
	fetcher  Fetcher
	registry *registry.Registry
	parser   *feed.Parser
}

func NewFeedSource(fetcher Fetcher, reg *registry.Registry, parser *feed.Parser) *FeedSource {
	return &FeedSource{
		fetcher:  fetcher,
		registry: reg,
		parser:   parser,
	}
}

// News reads one registered feed, or every feed when Source is "all".
// A feed that fails contributes no items instead of failing the call.
func (s *FeedSource) News(ctx context.Context, p NewsParams) (*NewsResult, error) {
	source := cmp.Or(p.Source, registry.AllFeeds)

	var items []NewsItem
	if source == registry.AllFeeds {
		items = s.all(ctx, p.MaxResults)
	} else {
		f, ok := s.registry.Feed(source)
		if !ok {
			return nil, &UnknownSourceError{Source: source, Valid: s.registry.FeedKeys()}
		}

		var err error
		items, err = s.read(ctx, f, p.MaxResults)
		if err != nil {
			slog.Warn("Feed failed", "feed", f.Key, "error", err)
			items = nil
		}
	}

	if items == nil {
		items = []NewsItem{}
	}

	result := &NewsResult{
		SourceFilter: source,
		Count:        len(items),
		News:         items,
	}
	if len(items) == 0 {
		result.Message = noNewsMessage
	}

	return result, nil
}

func (s *FeedSource) all(ctx context.Context, maxResults int) []NewsItem {
	feeds := s.registry.Feeds()
	if len(feeds) == 0 {
		return nil
	}

	// One extra item per feed keeps a single failing feed from starving
	// the combined result.
	perSource := (maxResults+len(feeds)-1)/len(feeds) + 1

	outcomes := tasks.SettleEach(ctx, 0, feeds, func(ctx context.Context, f registry.Feed) ([]NewsItem, error) {
		return s.read(ctx, f, perSource)
	})

	var items []NewsItem
	for i, outcome := range outcomes {
		if !outcome.OK() {
			slog.Warn("Feed failed", "feed", feeds[i].Key, "error", outcome.Err)
			continue
		}
		items = append(items, outcome.Value...)
	}

	return items[:min(maxResults, len(items))]
}

func (s *FeedSource) read(ctx context.Context, f registry.Feed, limit int) ([]NewsItem, error) {
	body, err := s.fetcher.FetchText(ctx, f.URL, nil)
	if err != nil {
		return nil, err
	}

	entries, err := s.parser.Run([]byte(body))
	if err != nil {
		return nil, err
	}

	entries = entries[:min(limit, len(entries))]

	items := make([]NewsItem, 0, len(entries))
	for _, entry := range entries {
		summary, _ := feed.Truncate(feed.StripHTML(entry.Summary), maxSummaryLength)

		items = append(items, NewsItem{
			Source:    f.Name,
			Title:     feed.CollapseSpace(entry.Title),
			Summary:   strings.TrimSpace(summary),
			Published: cmp.Or(strings.TrimSpace(entry.Published), "Unknown"),
			URL:       strings.TrimSpace(entry.Link),
		})
	}

	slog.Debug("Feed read", "feed", f.Key, "items", len(items))
	return items, nil
}
