// Package sources holds one adapter per upstream provider. Each adapter
// builds the provider request, decodes the response and maps it into a
// canonical item list.
package sources

import (
	"context"

	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/fetch"
	"github.com/lysyi3m/news-comb/app/registry"
)

type Fetcher interface {
	FetchText(ctx context.Context, rawURL string, params fetch.Params) (string, error)
	FetchJSON(ctx context.Context, rawURL string, params fetch.Params, out any) error
}

var _ Fetcher = (*fetch.Fetcher)(nil)

// Sources bundles every adapter over one fetcher and registry.
type Sources struct {
	Arxiv      *ArxivSource
	HackerNews *HackerNewsSource
	DevTo      *DevToSource
	Feeds      *FeedSource
	Reader     *ReaderSource
}

type options struct {
	pageFetcher Fetcher
}

type Option func(*options)

// WithPageFetcher sets the fetcher used for caller-supplied article URLs.
// It defaults to the shared fetcher.
func WithPageFetcher(fetcher Fetcher) Option {
	return func(o *options) { o.pageFetcher = fetcher }
}

// New wires all adapters. fanoutLimit bounds concurrent item fetches in
// the Hacker News adapter; 0 means unbounded.
func New(fetcher Fetcher, reg *registry.Registry, fanoutLimit int, opts ...Option) *Sources {
	o := options{pageFetcher: fetcher}
	for _, opt := range opts {
		opt(&o)
	}

	parser := feed.NewParser()

	return &Sources{
		Arxiv:      NewArxivSource(fetcher, reg),
		HackerNews: NewHackerNewsSource(fetcher, reg, fanoutLimit),
		DevTo:      NewDevToSource(fetcher, reg),
		Feeds:      NewFeedSource(fetcher, reg, parser),
		Reader:     NewReaderSource(o.pageFetcher, feed.NewContentExtractor()),
	}
}
