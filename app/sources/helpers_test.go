package sources

import (
	"testing"
	"time"

	"github.com/lysyi3m/news-comb/app/fetch"
	"github.com/lysyi3m/news-comb/app/registry"
)

// newTestRegistry points every endpoint at baseURL and keeps the default
// categories and keywords.
func newTestRegistry(t *testing.T, baseURL string, feeds []registry.Feed) *registry.Registry {
	t.Helper()

	defaults := registry.Default()
	reg, err := registry.New(registry.Endpoints{
		Arxiv:                baseURL + "/api/query",
		HackerNews:           baseURL + "/v0",
		HackerNewsDiscussion: "https://news.ycombinator.com/item",
		DevTo:                baseURL + "/api/articles",
	}, defaults.Categories(), feeds, defaults.Keywords())
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}
	return reg
}

func newTestFetcher() *fetch.Fetcher {
	return fetch.NewFetcher(fetch.WithTimeout(2 * time.Second))
}
