package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lysyi3m/news-comb/app/aggregator"
	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/registry"
	"github.com/lysyi3m/news-comb/app/sources"
)

type fakePapers struct {
	got    sources.PaperParams
	calls  int
	result *sources.PaperResult
	err    error
}

func (f *fakePapers) Search(ctx context.Context, p sources.PaperParams) (*sources.PaperResult, error) {
	f.got = p
	f.calls++
	return f.result, f.err
}

type fakeStories struct {
	got    sources.StoryParams
	result *sources.StoryResult
	err    error
}

func (f *fakeStories) Top(ctx context.Context, p sources.StoryParams) (*sources.StoryResult, error) {
	f.got = p
	return f.result, f.err
}

type fakeArticles struct {
	got    sources.ArticleParams
	result *sources.ArticleResult
	err    error
}

func (f *fakeArticles) Articles(ctx context.Context, p sources.ArticleParams) (*sources.ArticleResult, error) {
	f.got = p
	return f.result, f.err
}

type fakeNews struct {
	got    sources.NewsParams
	result *sources.NewsResult
	err    error
}

func (f *fakeNews) News(ctx context.Context, p sources.NewsParams) (*sources.NewsResult, error) {
	f.got = p
	return f.result, f.err
}

type fakeDashboard struct {
	got    sources.DashboardParams
	result *aggregator.Result
}

func (f *fakeDashboard) Build(ctx context.Context, p sources.DashboardParams) *aggregator.Result {
	f.got = p
	return f.result
}

type fakeReader struct {
	got    sources.ReadParams
	calls  int
	result *sources.ArticleText
	err    error
}

func (f *fakeReader) Read(ctx context.Context, p sources.ReadParams) (*sources.ArticleText, error) {
	f.got = p
	f.calls++
	return f.result, f.err
}

type testHandler struct {
	*Handler
	papers    *fakePapers
	stories   *fakeStories
	articles  *fakeArticles
	news      *fakeNews
	dashboard *fakeDashboard
	reader    *fakeReader
	metrics   *prometheus.Registry
}

func newTestHandler(t *testing.T) *testHandler {
	t.Helper()

	th := &testHandler{
		papers:    &fakePapers{result: &sources.PaperResult{Query: "q", Papers: []sources.PaperItem{}}},
		stories:   &fakeStories{result: &sources.StoryResult{Source: "Hacker News", Stories: []sources.StoryItem{}}},
		articles:  &fakeArticles{result: &sources.ArticleResult{Source: "DEV.to", Articles: []sources.ArticleItem{}}},
		news:      &fakeNews{result: &sources.NewsResult{SourceFilter: "all", News: []sources.NewsItem{}}},
		dashboard: &fakeDashboard{result: &aggregator.Result{GeneratedAt: "2024-01-02 03:04:05 UTC"}},
		reader:    &fakeReader{result: &sources.ArticleText{URL: "https://example.com/a"}},
		metrics:   prometheus.NewRegistry(),
	}

	th.Handler = &Handler{
		papers:    th.papers,
		stories:   th.stories,
		articles:  th.articles,
		news:      th.news,
		dashboard: th.dashboard,
		reader:    th.reader,
		generator: feed.NewGenerator(),
		registry:  registry.Default(),
		gatherer:  th.metrics,
		version:   "test",
	}

	return th
}

func (th *testHandler) serve(t *testing.T, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := NewServer(th.Handler, nil)

	req := httptest.NewRequest(method, target, nil)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
