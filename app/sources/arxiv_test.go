package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/lysyi3m/news-comb/app/fetch"
)

const arxivTwoEntries = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <title>ArXiv Query</title>
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <published>2024-01-01T00:00:00Z</published>
    <title>Attention Is
      All You Need   Again</title>
    <summary>  We revisit
      transformers.  </summary>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <link href="http://arxiv.org/abs/2401.00001v1" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2401.00001v1" rel="related" type="application/pdf"/>
    <arxiv:primary_category term="cs.LG"/>
    <category term="cs.LG" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.AI" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2401.00002v1</id>
    <published>2024-01-02T00:00:00Z</published>
    <title>Diffusion for Everyone</title>
    <summary>Short abstract.</summary>
    <author><name>Grace Hopper</name></author>
    <category term="cs.CV"/>
  </entry>
</feed>`

func arxivServer(t *testing.T, body string, gotQuery *url.Values) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotQuery != nil {
			*gotQuery = r.URL.Query()
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestArxivSearch_TransformerScenario(t *testing.T) {
	var query url.Values
	server := arxivServer(t, arxivTwoEntries, &query)
	source := NewArxivSource(newTestFetcher(), newTestRegistry(t, server.URL, nil))

	result, err := source.Search(context.Background(), PaperParams{
		Query:      "transformer",
		MaxResults: 2,
		SortBy:     SortNewest,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Count > 2 || result.Count != len(result.Papers) {
		t.Errorf("Expected count <= 2 matching papers, got count=%d papers=%d", result.Count, len(result.Papers))
	}
	for i, paper := range result.Papers {
		if len(paper.Categories) == 0 {
			t.Errorf("Expected paper %d to have categories", i)
		}
		if paper.PDFURL == "" {
			t.Errorf("Expected paper %d to have a pdf_url", i)
		}
	}

	expectedSearch := "(cat:cs.AI OR cat:cs.LG OR cat:cs.CL OR cat:cs.CV OR cat:cs.RO OR cat:stat.ML OR cat:cs.NE) AND transformer"
	if query.Get("search_query") != expectedSearch {
		t.Errorf("Expected search_query '%s', got '%s'", expectedSearch, query.Get("search_query"))
	}
	if query.Get("sortBy") != SortSubmittedDate {
		t.Errorf("Expected newest to map to submittedDate, got '%s'", query.Get("sortBy"))
	}
	if query.Get("sortOrder") != "descending" || query.Get("start") != "0" || query.Get("max_results") != "2" {
		t.Errorf("Unexpected request parameters: %v", query)
	}

	if result.CategoryFilter != "All AI Categories" {
		t.Errorf("Expected 'All AI Categories', got '%s'", result.CategoryFilter)
	}
	if result.SortBy != SortSubmittedDate {
		t.Errorf("Expected sort_by submittedDate, got '%s'", result.SortBy)
	}
}

func TestArxivSearch_MapsEntries(t *testing.T) {
	server := arxivServer(t, arxivTwoEntries, nil)
	source := NewArxivSource(newTestFetcher(), newTestRegistry(t, server.URL, nil))

	result, err := source.Search(context.Background(), PaperParams{Query: "x", MaxResults: 5, SortBy: SortRelevance})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Papers) != 2 {
		t.Fatalf("Expected 2 papers, got %d", len(result.Papers))
	}

	first := result.Papers[0]
	if first.Title != "Attention Is All You Need Again" {
		t.Errorf("Expected collapsed title, got '%s'", first.Title)
	}
	if first.Abstract != "We revisit transformers." {
		t.Errorf("Expected collapsed abstract, got '%s'", first.Abstract)
	}
	if strings.Join(first.Authors, ",") != "Ada Lovelace,Alan Turing" {
		t.Errorf("Unexpected authors: %v", first.Authors)
	}
	if strings.Join(first.Categories, ",") != "cs.LG,cs.AI" {
		t.Errorf("Unexpected categories: %v", first.Categories)
	}
	if first.PDFURL != "http://arxiv.org/pdf/2401.00001v1" {
		t.Errorf("Expected typed PDF link, got '%s'", first.PDFURL)
	}
	if first.ArxivURL != "http://arxiv.org/abs/2401.00001v1" {
		t.Errorf("Expected html link, got '%s'", first.ArxivURL)
	}
	if first.PublishedDate != "2024-01-01T00:00:00Z" {
		t.Errorf("Unexpected published date '%s'", first.PublishedDate)
	}

	second := result.Papers[1]
	if second.PDFURL != "http://arxiv.org/pdf/2401.00002v1" {
		t.Errorf("Expected PDF derived from id, got '%s'", second.PDFURL)
	}
	if second.ArxivURL != "http://arxiv.org/abs/2401.00002v1" {
		t.Errorf("Expected id fallback for arxiv_url, got '%s'", second.ArxivURL)
	}
	if len(second.Authors) != 1 || len(second.Categories) != 1 {
		t.Errorf("Expected single author and category to be lists, got %v %v", second.Authors, second.Categories)
	}
}

func TestArxivSearch_SingleEntryAuthorsAndTruncation(t *testing.T) {
	var authors strings.Builder
	for i := 1; i <= 7; i++ {
		fmt.Fprintf(&authors, "<author><name>Author %d</name></author>", i)
	}
	body := fmt.Sprintf(`<feed xmlns="http://www.w3.org/2005/Atom"><entry>
		<id>http://arxiv.org/abs/1</id>
		<title>One</title>
		<summary>%s</summary>
		%s
		<link href="http://arxiv.org/pdf/1" type="application/pdf"/>
		<category term="cs.AI"/>
	</entry></feed>`, strings.Repeat("word ", 200), authors.String())

	server := arxivServer(t, body, nil)
	source := NewArxivSource(newTestFetcher(), newTestRegistry(t, server.URL, nil))

	result, err := source.Search(context.Background(), PaperParams{Query: "x", MaxResults: 5, SortBy: SortSubmittedDate})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("Expected single entry to yield 1 paper, got %d", result.Count)
	}

	paper := result.Papers[0]
	if len(paper.Authors) != 5 || paper.Authors[4] != "Author 5" {
		t.Errorf("Expected first 5 authors in order, got %v", paper.Authors)
	}
	if !strings.HasSuffix(paper.Abstract, "...") {
		t.Errorf("Expected truncated abstract to end with ellipsis")
	}
	if utf8.RuneCountInString(paper.Abstract) > 503 {
		t.Errorf("Expected abstract of at most 503 runes, got %d", utf8.RuneCountInString(paper.Abstract))
	}
	if paper.ArxivURL != "http://arxiv.org/abs/1" {
		t.Errorf("Expected id fallback when only PDF link exists, got '%s'", paper.ArxivURL)
	}
	if paper.PublishedDate != "Unknown" {
		t.Errorf("Expected 'Unknown' published date, got '%s'", paper.PublishedDate)
	}
}

func TestArxivSearch_NoEntries(t *testing.T) {
	server := arxivServer(t, `<feed xmlns="http://www.w3.org/2005/Atom"><title>empty</title></feed>`, nil)
	source := NewArxivSource(newTestFetcher(), newTestRegistry(t, server.URL, nil))

	result, err := source.Search(context.Background(), PaperParams{Query: "zzzz", MaxResults: 5, SortBy: SortSubmittedDate})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Count != 0 || len(result.Papers) != 0 {
		t.Errorf("Expected empty result, got %d", result.Count)
	}
	if result.Message != "No papers found. Try a broader search term." {
		t.Errorf("Unexpected message '%s'", result.Message)
	}

	rendered := Render(result, nil)
	if !strings.Contains(rendered, `"papers": []`) {
		t.Errorf("Expected empty papers list in payload, got %s", rendered)
	}
}

func TestArxivSearch_Category(t *testing.T) {
	var query url.Values
	server := arxivServer(t, arxivTwoEntries, &query)
	source := NewArxivSource(newTestFetcher(), newTestRegistry(t, server.URL, nil))

	result, err := source.Search(context.Background(), PaperParams{Query: "robots", Category: "cs.RO", MaxResults: 3, SortBy: SortRelevance})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if query.Get("search_query") != "cat:cs.RO AND robots" {
		t.Errorf("Unexpected search_query '%s'", query.Get("search_query"))
	}
	if result.CategoryFilter != "cs.RO" {
		t.Errorf("Expected category_filter 'cs.RO', got '%s'", result.CategoryFilter)
	}
}

func TestArxivSearch_UnknownCategory(t *testing.T) {
	source := NewArxivSource(newTestFetcher(), newTestRegistry(t, "http://127.0.0.1:1", nil))

	_, err := source.Search(context.Background(), PaperParams{Query: "x", Category: "cs.XX", MaxResults: 5})

	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected InvalidInputError, got %T: %v", err, err)
	}
	if !strings.HasPrefix(RenderError(err), `{"error":"Invalid input: unknown category 'cs.XX'`) {
		t.Errorf("Unexpected payload %s", RenderError(err))
	}
}

func TestArxivSearch_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()
	source := NewArxivSource(newTestFetcher(), newTestRegistry(t, server.URL, nil))

	result, err := source.Search(context.Background(), PaperParams{Query: "x", MaxResults: 5})
	if result != nil {
		t.Error("Expected no result on failure")
	}

	expected := `{"error":"Rate limit exceeded. Please wait before retrying."}`
	if got := Render(result, err); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestArxivSearch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	fetcher := fetch.NewFetcher(fetch.WithTimeout(50 * time.Millisecond))
	source := NewArxivSource(fetcher, newTestRegistry(t, server.URL, nil))

	result, err := source.Search(context.Background(), PaperParams{Query: "x", MaxResults: 5})

	expected := `{"error":"Request timed out. The service may be slow. Try again."}`
	if got := Render(result, err); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestArxivSearch_MalformedXML(t *testing.T) {
	server := arxivServer(t, `<feed><entry>`, nil)
	source := NewArxivSource(newTestFetcher(), newTestRegistry(t, server.URL, nil))

	_, err := source.Search(context.Background(), PaperParams{Query: "x", MaxResults: 5})
	if err == nil {
		t.Fatal("Expected error for malformed XML")
	}
	if !strings.HasPrefix(ErrorMessage(err), "Unexpected error: ") {
		t.Errorf("Expected unexpected error message, got '%s'", ErrorMessage(err))
	}
}
