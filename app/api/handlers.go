package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/registry"
	"github.com/lysyi3m/news-comb/app/sources"
)

// maxFeedItems bounds the items rendered by GET /feeds/:source.
const maxFeedItems = 20

func NewHandler(srcs *sources.Sources, dashboard DashboardBuilder, reg *registry.Registry,
	gatherer prometheus.Gatherer, version string) *Handler {
	return &Handler{
		papers:    srcs.Arxiv,
		stories:   srcs.HackerNews,
		articles:  srcs.DevTo,
		news:      srcs.Feeds,
		dashboard: dashboard,
		reader:    srcs.Reader,
		generator: feed.NewGenerator(),
		registry:  reg,
		gatherer:  gatherer,
		version:   version,
	}
}

func (h *Handler) GetPapers(c *gin.Context) {
	var p sources.PaperParams
	if err := c.ShouldBindQuery(&p); err != nil {
		renderJSON(c, nil, invalidInput(err))
		return
	}

	result, err := h.papers.Search(c.Request.Context(), p)
	renderJSON(c, result, err)
}

func (h *Handler) GetHackerNews(c *gin.Context) {
	var p sources.StoryParams
	if err := c.ShouldBindQuery(&p); err != nil {
		renderJSON(c, nil, invalidInput(err))
		return
	}

	result, err := h.stories.Top(c.Request.Context(), p)
	renderJSON(c, result, err)
}

func (h *Handler) GetDevTo(c *gin.Context) {
	var p sources.ArticleParams
	if err := c.ShouldBindQuery(&p); err != nil {
		renderJSON(c, nil, invalidInput(err))
		return
	}

	result, err := h.articles.Articles(c.Request.Context(), p)
	renderJSON(c, result, err)
}

func (h *Handler) GetNews(c *gin.Context) {
	var p sources.NewsParams
	if err := c.ShouldBindQuery(&p); err != nil {
		renderJSON(c, nil, invalidInput(err))
		return
	}

	result, err := h.news.News(c.Request.Context(), p)
	renderJSON(c, result, err)
}

func (h *Handler) GetDashboard(c *gin.Context) {
	var p sources.DashboardParams
	if err := c.ShouldBindQuery(&p); err != nil {
		renderJSON(c, nil, invalidInput(err))
		return
	}

	renderJSON(c, h.dashboard.Build(c.Request.Context(), p), nil)
}

func (h *Handler) GetArticle(c *gin.Context) {
	var p sources.ReadParams
	if err := c.ShouldBindQuery(&p); err != nil {
		renderJSON(c, nil, invalidInput(err))
		return
	}

	result, err := h.reader.Read(c.Request.Context(), p)
	renderJSON(c, result, err)
}

// GetFeeds lists the registered feeds.
func (h *Handler) GetFeeds(c *gin.Context) {
	feeds := h.registry.Feeds()

	list := make([]map[string]string, 0, len(feeds))
	for _, f := range feeds {
		list = append(list, map[string]string{
			"key":  f.Key,
			"name": f.Name,
			"url":  f.URL,
			"rss":  "/feeds/" + f.Key,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": list,
		"total": len(list),
	})
}

// GetFeed renders the news of one feed, or of every feed, as RSS 2.0.
func (h *Handler) GetFeed(c *gin.Context) {
	p := sources.NewsParams{MaxResults: maxFeedItems}
	if raw := c.Query("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			renderJSON(c, nil, invalidInput(errors.New("max_results must be an integer")))
			return
		}
		p.MaxResults = n
	}
	p.Source = c.Param("source")

	if err := validate(&p); err != nil {
		renderJSON(c, nil, err)
		return
	}

	result, err := h.news.News(c.Request.Context(), p)
	if err != nil {
		var unknown *sources.UnknownSourceError
		if errors.As(err, &unknown) {
			slog.Warn("Feed not found", "feed", p.Source)
			c.Data(http.StatusNotFound, "application/json; charset=utf-8", []byte(sources.RenderError(err)))
			return
		}
		renderJSON(c, nil, err)
		return
	}

	channel := feed.Channel{
		Title:       "AI News",
		Link:        baseURL(c),
		SelfLink:    baseURL(c) + c.Request.URL.Path,
		Description: "Latest AI news from " + h.feedTitle(p.Source),
		Generator:   ServerName + "/" + h.version,
	}
	if f, ok := h.registry.Feed(p.Source); ok {
		channel.Title = "AI News: " + f.Name
		channel.Link = f.URL
	}

	items := make([]feed.ChannelItem, 0, len(result.News))
	for _, n := range result.News {
		items = append(items, feed.ChannelItem{
			Title:       n.Title,
			Link:        n.URL,
			Description: n.Summary,
			Published:   n.Published,
			Category:    n.Source,
		})
	}

	rss := h.generator.Run(channel, items)

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(items)))
	c.Header("X-Feed-Name", p.Source)

	c.String(http.StatusOK, rss)
}

func (h *Handler) feedTitle(source string) string {
	if f, ok := h.registry.Feed(source); ok {
		return f.Name
	}
	return "every registered feed"
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"server":  ServerName,
		"version": h.version,
	})
}

func (h *Handler) GetMetrics() http.Handler {
	gatherer := h.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// renderJSON writes a payload in the same encoding the tools return.
func renderJSON(c *gin.Context, v any, err error) {
	status := sources.StatusCode(err)
	if err != nil {
		if status >= http.StatusInternalServerError {
			slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		} else {
			slog.Warn("Request rejected", "path", c.Request.URL.Path, "error", err)
		}
	}

	c.Data(status, "application/json; charset=utf-8", []byte(sources.Render(v, err)))
}

func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
