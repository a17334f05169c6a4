package sources

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/registry"
	"github.com/lysyi3m/news-comb/app/tasks"
)

const (
	hackerNewsSource = "Hacker News"
	timestampFormat  = "2006-01-02 15:04:05"
)

// Only the first candidatePool ids of the provider ranking are fetched.
const candidatePool = 100

type hnItem struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	By          string `json:"by"`
	Descendants int    `json:"descendants"`
	Time        int64  `json:"time"`
}

type HackerNewsSource struct {
	fetcher     Fetcher
	registry    *registry.Registry
	filter      *feed.KeywordFilter
	fanoutLimit int
}

func NewHackerNewsSource(fetcher Fetcher, reg *registry.Registry, fanoutLimit int) *HackerNewsSource {
	return &HackerNewsSource{
		fetcher:     fetcher,
		registry:    reg,
		filter:      feed.NewKeywordFilter(reg.Keywords()),
		fanoutLimit: fanoutLimit,
	}
}

// Top returns top stories, optionally restricted to AI topics.
//
// Candidates are taken in provider rank order and accumulation stops at
// MaxResults before the score sort, so the result is the best-scored stories
// among the first accepted candidates, not a global top-N by score.
func (s *HackerNewsSource) Top(ctx context.Context, p StoryParams) (*StoryResult, error) {
	base := s.registry.Endpoints().HackerNews

	var ids []int64
	if err := s.fetcher.FetchJSON(ctx, base+"/topstories.json", nil, &ids); err != nil {
		return nil, err
	}

	ids = ids[:min(candidatePool, len(ids))]

	outcomes := tasks.SettleEach(ctx, s.fanoutLimit, ids, func(ctx context.Context, id int64) (*hnItem, error) {
		var item *hnItem
		if err := s.fetcher.FetchJSON(ctx, fmt.Sprintf("%s/item/%d.json", base, id), nil, &item); err != nil {
			return nil, err
		}
		return item, nil
	})

	if failed := tasks.Failures(outcomes); failed > 0 {
		slog.Warn("Some Hacker News items failed to load", "failed", failed, "total", len(outcomes))
	}

	stories := []StoryItem{}
	for _, outcome := range outcomes {
		if len(stories) >= p.MaxResults {
			break
		}

		item := outcome.Value
		if !outcome.OK() || item == nil || item.Type != "story" || item.Title == "" {
			continue
		}

		if p.FilterAI && !s.filter.Matches(item.Title+" "+item.URL) {
			continue
		}

		stories = append(stories, s.storyOf(item))
	}

	slices.SortStableFunc(stories, func(a, b StoryItem) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return &StoryResult{
		Source:        hackerNewsSource,
		FilteredForAI: p.FilterAI,
		Count:         len(stories),
		Stories:       stories,
	}, nil
}

func (s *HackerNewsSource) storyOf(item *hnItem) StoryItem {
	discussion := fmt.Sprintf("%s?id=%d", s.registry.Endpoints().HackerNewsDiscussion, item.ID)

	return StoryItem{
		ID:           item.ID,
		Title:        item.Title,
		URL:          cmp.Or(item.URL, discussion),
		Score:        item.Score,
		Author:       cmp.Or(item.By, "unknown"),
		CommentCount: item.Descendants,
		PostedAt:     formatTimestamp(item.Time),
		HNDiscussion: discussion,
	}
}

func formatTimestamp(unix int64) string {
	if unix == 0 {
		return "Unknown"
	}
	return time.Unix(unix, 0).UTC().Format(timestampFormat) + " UTC"
}
