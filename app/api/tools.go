package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lysyi3m/news-comb/app/registry"
	"github.com/lysyi3m/news-comb/app/sources"
)

const (
	ToolArxivPapers     = "ai_news_get_arxiv_papers"
	ToolHackerNews      = "ai_news_get_hackernews"
	ToolDevToArticles   = "ai_news_get_devto_articles"
	ToolRSSFeed         = "ai_news_get_rss_feed"
	ToolTrendingSummary = "ai_news_get_trending_summary"
	ToolReadArticle     = "ai_news_read_article"
)

// NewToolServer registers every tool on a new MCP server.
func NewToolServer(h *Handler) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		h.version,
		server.WithToolCapabilities(false),
		server.WithToolHandlerMiddleware(logToolCalls),
		server.WithRecovery(),
	)

	s.AddTools(h.Tools()...)

	return s
}

// NewMCPHandler serves the tool server over stateless streamable HTTP.
func NewMCPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s, server.WithStateLess(true))
}

func logToolCalls(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := next(ctx, req)
		slog.Debug("Tool call completed", "tool", req.Params.Name, "duration", time.Since(start))
		return result, err
	}
}

// Tools returns the tool definitions paired with their handlers.
func (h *Handler) Tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: h.arxivPapersTool(), Handler: h.ToolArxivPapers},
		{Tool: h.hackerNewsTool(), Handler: h.ToolHackerNews},
		{Tool: h.devToArticlesTool(), Handler: h.ToolDevToArticles},
		{Tool: h.rssFeedTool(), Handler: h.ToolRSSFeed},
		{Tool: h.trendingSummaryTool(), Handler: h.ToolTrendingSummary},
		{Tool: h.readArticleTool(), Handler: h.ToolReadArticle},
	}
}

func (h *Handler) arxivPapersTool() mcp.Tool {
	return mcp.NewTool(ToolArxivPapers,
		mcp.WithTitleAnnotation("Search Latest AI Research Papers on ArXiv"),
		mcp.WithDescription(`Search arXiv for recent AI/ML research papers.
Returns titles, authors, abstracts, categories, abstract page links and PDF links.

Returns JSON with: { query, category_filter, sort_by, count, papers: [ { title, authors, abstract, categories, published_date, arxiv_url, pdf_url } ] }`),
		mcp.WithString("query",
			mcp.Description("Search terms, e.g. 'large language model' or 'diffusion model'"),
			mcp.DefaultString(sources.DefaultPaperQuery),
			mcp.MinLength(1),
			mcp.MaxLength(200),
		),
		mcp.WithString("category",
			mcp.Description("Restrict results to one arXiv category"),
			mcp.Enum(h.registry.CategoryCodes()...),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Number of papers to return"),
			mcp.Min(1),
			mcp.Max(20),
			mcp.DefaultNumber(sources.DefaultPaperMaxResults),
		),
		mcp.WithString("sort_by",
			mcp.Description("Sort order; 'newest' is an alias of 'submittedDate'"),
			mcp.Enum(sources.SortSubmittedDate, sources.SortRelevance, sources.SortNewest),
			mcp.DefaultString(sources.SortSubmittedDate),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func (h *Handler) hackerNewsTool() mcp.Tool {
	return mcp.NewTool(ToolHackerNews,
		mcp.WithTitleAnnotation("Get Trending AI Stories from Hacker News"),
		mcp.WithDescription(`Fetch top Hacker News stories, optionally keeping only AI/ML related ones.
Stories are ranked by score.

Returns JSON with: { source, filtered_for_ai, count, stories: [ { id, title, url, score, author, comment_count, posted_at, hn_discussion } ] }`),
		mcp.WithNumber("max_results",
			mcp.Description("Number of stories to return"),
			mcp.Min(1),
			mcp.Max(30),
			mcp.DefaultNumber(sources.DefaultStoryMaxResults),
		),
		mcp.WithBoolean("filter_ai",
			mcp.Description("Only return stories whose title mentions an AI/ML keyword"),
			mcp.DefaultBool(true),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func (h *Handler) devToArticlesTool() mcp.Tool {
	return mcp.NewTool(ToolDevToArticles,
		mcp.WithTitleAnnotation("Get AI/ML Developer Articles from DEV.to"),
		mcp.WithDescription(`Fetch recent developer articles from DEV.to for a tag.

Returns JSON with: { source, tag, count, articles: [ { title, author, author_username, tags, description, reactions_count, comments_count, reading_time_minutes, published_at, url } ] }`),
		mcp.WithString("tag",
			mcp.Description("Article tag, e.g. 'machinelearning', 'ai', 'llm' or 'openai'"),
			mcp.DefaultString(sources.DefaultArticleTag),
			mcp.MinLength(1),
			mcp.MaxLength(50),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Number of articles to return"),
			mcp.Min(1),
			mcp.Max(20),
			mcp.DefaultNumber(sources.DefaultArticleMax),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func (h *Handler) rssFeedTool() mcp.Tool {
	feeds := h.registry.Feeds()
	names := make([]string, 0, len(feeds))
	for _, f := range feeds {
		names = append(names, f.Name)
	}
	keys := append(h.registry.FeedKeys(), registry.AllFeeds)

	return mcp.NewTool(ToolRSSFeed,
		mcp.WithTitleAnnotation("Get AI News from Top AI Organization RSS Feeds"),
		mcp.WithDescription(fmt.Sprintf(`Fetch the latest AI news from the feeds of AI organizations.
Sources: %s.

Returns JSON with: { source_filter, count, news: [ { source, title, summary, published, url } ] }`, strings.Join(names, ", "))),
		mcp.WithString("source",
			mcp.Description("Feed key, or 'all' to merge every feed"),
			mcp.Enum(keys...),
			mcp.DefaultString(registry.AllFeeds),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Number of news items to return"),
			mcp.Min(1),
			mcp.Max(20),
			mcp.DefaultNumber(sources.DefaultNewsMaxResults),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func (h *Handler) trendingSummaryTool() mcp.Tool {
	return mcp.NewTool(ToolTrendingSummary,
		mcp.WithTitleAnnotation("Get Full AI Trends Dashboard (Papers + News + HN)"),
		mcp.WithDescription(`Combine arXiv papers, feed news and Hacker News stories into one snapshot.
Categories are fetched concurrently; a category that fails is left out.

Returns JSON with: { generated_at, summary: { papers?, hackernews?, news? } }`),
		mcp.WithBoolean("include_papers",
			mcp.Description("Include recent arXiv papers"),
			mcp.DefaultBool(true),
		),
		mcp.WithBoolean("include_news",
			mcp.Description("Include news from every feed"),
			mcp.DefaultBool(true),
		),
		mcp.WithBoolean("include_hn",
			mcp.Description("Include AI stories from Hacker News"),
			mcp.DefaultBool(true),
		),
		mcp.WithNumber("max_items_each",
			mcp.Description("Maximum items per category"),
			mcp.Min(1),
			mcp.Max(10),
			mcp.DefaultNumber(sources.DefaultDashboardMax),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func (h *Handler) readArticleTool() mcp.Tool {
	return mcp.NewTool(ToolReadArticle,
		mcp.WithTitleAnnotation("Read the Text of an Article"),
		mcp.WithDescription(`Download a web page and extract its readable text, e.g. a link returned by another tool.

Returns JSON with: { url, title, byline, site_name, excerpt, length, content }`),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute http or https URL of the page"),
			mcp.MaxLength(2048),
		),
		mcp.WithNumber("max_chars",
			mcp.Description("Maximum characters of content to return"),
			mcp.Min(200),
			mcp.Max(20000),
			mcp.DefaultNumber(sources.DefaultReadMaxChars),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func (h *Handler) ToolArxivPapers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := sources.PaperParams{
		Query:      sources.DefaultPaperQuery,
		MaxResults: sources.DefaultPaperMaxResults,
		SortBy:     sources.SortSubmittedDate,
	}
	if err := bindArguments(req, &p); err != nil {
		return toolResult(nil, err), nil
	}

	result, err := h.papers.Search(ctx, p)
	return toolResult(result, err), nil
}

func (h *Handler) ToolHackerNews(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := sources.StoryParams{
		MaxResults: sources.DefaultStoryMaxResults,
		FilterAI:   true,
	}
	if err := bindArguments(req, &p); err != nil {
		return toolResult(nil, err), nil
	}

	result, err := h.stories.Top(ctx, p)
	return toolResult(result, err), nil
}

func (h *Handler) ToolDevToArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := sources.ArticleParams{
		Tag:        sources.DefaultArticleTag,
		MaxResults: sources.DefaultArticleMax,
	}
	if err := bindArguments(req, &p); err != nil {
		return toolResult(nil, err), nil
	}

	result, err := h.articles.Articles(ctx, p)
	return toolResult(result, err), nil
}

func (h *Handler) ToolRSSFeed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := sources.NewsParams{
		Source:     registry.AllFeeds,
		MaxResults: sources.DefaultNewsMaxResults,
	}
	if err := bindArguments(req, &p); err != nil {
		return toolResult(nil, err), nil
	}

	result, err := h.news.News(ctx, p)
	return toolResult(result, err), nil
}

func (h *Handler) ToolTrendingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := sources.DashboardParams{
		IncludePapers: true,
		IncludeNews:   true,
		IncludeHN:     true,
		MaxItemsEach:  sources.DefaultDashboardMax,
	}
	if err := bindArguments(req, &p); err != nil {
		return toolResult(nil, err), nil
	}

	return toolResult(h.dashboard.Build(ctx, p), nil), nil
}

func (h *Handler) ToolReadArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := sources.ReadParams{
		MaxChars: sources.DefaultReadMaxChars,
	}
	if err := bindArguments(req, &p); err != nil {
		return toolResult(nil, err), nil
	}

	result, err := h.reader.Read(ctx, p)
	return toolResult(result, err), nil
}

// bindArguments decodes tool arguments over the defaults already in params
// and validates the result.
func bindArguments(req mcp.CallToolRequest, params any) error {
	if err := req.BindArguments(params); err != nil {
		return invalidInput(err)
	}
	return validate(params)
}

// toolResult renders the payload as text content. Failures are reported in
// the error envelope rather than as protocol errors.
func toolResult(v any, err error) *mcp.CallToolResult {
	if err != nil {
		slog.Warn("Tool call failed", "error", err)
	}
	return mcp.NewToolResultText(sources.Render(v, err))
}
