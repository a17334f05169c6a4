package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

type hnFixture struct {
	ids      []int64
	items    map[int64]string
	failing  map[int64]bool
	requests atomic.Int32
}

func (f *hnFixture) server(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v0/topstories.json" {
			json.NewEncoder(w).Encode(f.ids)
			return
		}

		var id int64
		if _, err := fmt.Sscanf(r.URL.Path, "/v0/item/%d.json", &id); err != nil {
			http.NotFound(w, r)
			return
		}
		f.requests.Add(1)

		if f.failing[id] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body, ok := f.items[id]
		if !ok {
			body = "null"
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func story(id int64, title, url string, score int) string {
	return fmt.Sprintf(`{"id":%d,"type":"story","title":%q,"url":%q,"score":%d,"by":"user%d","descendants":%d,"time":1700000000}`,
		id, title, url, score, id, score/2)
}

func TestHackerNewsTop_FiltersAndSorts(t *testing.T) {
	fixture := &hnFixture{
		ids: []int64{1, 2, 3, 4, 5, 6, 7, 8},
		items: map[int64]string{
			1: story(1, "New LLM beats benchmarks", "https://example.com/llm", 50),
			2: story(2, "Show HN: My text editor", "https://example.com/editor", 500),
			3: `{"id":3,"type":"job","title":"Hiring ML engineers","score":10}`,
			4: `{"id":4,"type":"story","score":99}`,
			5: story(5, "Why startups fail", "https://openai.com/blog/x", 300),
			6: story(6, "Reinforcement Learning from scratch", "", 120),
		},
		failing: map[int64]bool{7: true},
	}
	server := fixture.server(t)
	source := NewHackerNewsSource(newTestFetcher(), newTestRegistry(t, server.URL, nil), 0)

	result, err := source.Top(context.Background(), StoryParams{MaxResults: 10, FilterAI: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Source != "Hacker News" || !result.FilteredForAI {
		t.Errorf("Unexpected header: %+v", result)
	}
	if result.Count != 3 {
		t.Fatalf("Expected 3 stories, got %d: %+v", result.Count, result.Stories)
	}

	expectedIDs := []int64{5, 6, 1}
	for i, id := range expectedIDs {
		if result.Stories[i].ID != id {
			t.Errorf("Expected story %d to be id %d, got %d", i, id, result.Stories[i].ID)
		}
	}

	for i := 1; i < len(result.Stories); i++ {
		if result.Stories[i-1].Score < result.Stories[i].Score {
			t.Errorf("Expected stories sorted by score descending")
		}
	}

	filter := source.filter
	for _, s := range result.Stories {
		if !filter.Matches(s.Title + " " + s.URL) {
			t.Errorf("Expected story %d to match an AI keyword", s.ID)
		}
	}

	rl := result.Stories[1]
	if rl.URL != "https://news.ycombinator.com/item?id=6" {
		t.Errorf("Expected discussion URL fallback, got '%s'", rl.URL)
	}
	if rl.HNDiscussion != "https://news.ycombinator.com/item?id=6" {
		t.Errorf("Unexpected discussion URL '%s'", rl.HNDiscussion)
	}
	if rl.PostedAt != "2023-11-14 22:13:20 UTC" {
		t.Errorf("Unexpected posted_at '%s'", rl.PostedAt)
	}
	if rl.Author != "user6" || rl.CommentCount != 60 {
		t.Errorf("Unexpected author/comments: %s %d", rl.Author, rl.CommentCount)
	}
}

func TestHackerNewsTop_NoFilter(t *testing.T) {
	fixture := &hnFixture{
		ids: []int64{1, 2},
		items: map[int64]string{
			1: `{"id":1,"type":"story","title":"Plain story"}`,
			2: story(2, "Another story", "https://example.com", 5),
		},
	}
	server := fixture.server(t)
	source := NewHackerNewsSource(newTestFetcher(), newTestRegistry(t, server.URL, nil), 0)

	result, err := source.Top(context.Background(), StoryParams{MaxResults: 10, FilterAI: false})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("Expected 2 stories, got %d", result.Count)
	}

	plain := result.Stories[1]
	if plain.Author != "unknown" || plain.Score != 0 || plain.CommentCount != 0 {
		t.Errorf("Expected defaults, got %+v", plain)
	}
	if plain.PostedAt != "Unknown" {
		t.Errorf("Expected 'Unknown' posted_at, got '%s'", plain.PostedAt)
	}
}

func TestHackerNewsTop_StopsInRankOrder(t *testing.T) {
	fixture := &hnFixture{
		ids: []int64{1, 2, 3},
		items: map[int64]string{
			1: story(1, "a", "https://e.com/1", 1),
			2: story(2, "b", "https://e.com/2", 2),
			3: story(3, "c", "https://e.com/3", 1000),
		},
	}
	server := fixture.server(t)
	source := NewHackerNewsSource(newTestFetcher(), newTestRegistry(t, server.URL, nil), 0)

	result, err := source.Top(context.Background(), StoryParams{MaxResults: 2, FilterAI: false})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// the high-scoring third story is outside the first two accepted candidates
	if result.Count != 2 || result.Stories[0].ID != 2 || result.Stories[1].ID != 1 {
		t.Errorf("Expected stories [2 1], got %+v", result.Stories)
	}
}

func TestHackerNewsTop_CandidatePool(t *testing.T) {
	fixture := &hnFixture{items: map[int64]string{}}
	for i := int64(1); i <= 150; i++ {
		fixture.ids = append(fixture.ids, i)
	}
	server := fixture.server(t)
	source := NewHackerNewsSource(newTestFetcher(), newTestRegistry(t, server.URL, nil), 8)

	result, err := source.Top(context.Background(), StoryParams{MaxResults: 5, FilterAI: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Count != 0 {
		t.Errorf("Expected no stories from null items, got %d", result.Count)
	}
	if got := fixture.requests.Load(); got != 100 {
		t.Errorf("Expected 100 item requests, got %d", got)
	}
}

func TestHackerNewsTop_IDListFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	source := NewHackerNewsSource(newTestFetcher(), newTestRegistry(t, server.URL, nil), 0)

	result, err := source.Top(context.Background(), StoryParams{MaxResults: 5, FilterAI: true})

	expected := `{"error":"Service temporarily unavailable. Try again shortly."}`
	if got := Render(result, err); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestHackerNewsTop_RenderedShape(t *testing.T) {
	fixture := &hnFixture{ids: []int64{}, items: map[int64]string{}}
	server := fixture.server(t)
	source := NewHackerNewsSource(newTestFetcher(), newTestRegistry(t, server.URL, nil), 0)

	result, err := source.Top(context.Background(), StoryParams{MaxResults: 5, FilterAI: true})
	rendered := Render(result, err)

	for _, part := range []string{`"source": "Hacker News"`, `"filtered_for_ai": true`, `"count": 0`, `"stories": []`} {
		if !strings.Contains(rendered, part) {
			t.Errorf("Expected payload to contain %s, got %s", part, rendered)
		}
	}
}
