package api

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lysyi3m/news-comb/app/aggregator"
	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/registry"
	"github.com/lysyi3m/news-comb/app/sources"
)

// ServerName identifies the tool server to MCP clients and on /health.
const ServerName = "ai-news-mcp-server"

type ArticleLister interface {
	Articles(ctx context.Context, p sources.ArticleParams) (*sources.ArticleResult, error)
}

type DashboardBuilder interface {
	Build(ctx context.Context, p sources.DashboardParams) *aggregator.Result
}

type PageReader interface {
	Read(ctx context.Context, p sources.ReadParams) (*sources.ArticleText, error)
}

type GeneratorInterface interface {
	Run(channel feed.Channel, items []feed.ChannelItem) string
}

var (
	_ ArticleLister      = (*sources.DevToSource)(nil)
	_ DashboardBuilder   = (*aggregator.Dashboard)(nil)
	_ PageReader         = (*sources.ReaderSource)(nil)
	_ GeneratorInterface = (*feed.Generator)(nil)
)

type Handler struct {
	papers    aggregator.PaperSearcher
	stories   aggregator.StoryRanker
	articles  ArticleLister
	news      aggregator.NewsReader
	dashboard DashboardBuilder
	reader    PageReader
	generator GeneratorInterface
	registry  *registry.Registry
	gatherer  prometheus.Gatherer
	version   string
}
