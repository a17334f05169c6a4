package sources

import (
	"context"
	"errors"
	"net/url"
	"unicode/utf8"

	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/fetch"
)

type ReaderSource struct {
	fetcher   Fetcher
	extractor *feed.ContentExtractor
}

func NewReaderSource(fetcher Fetcher, extractor *feed.ContentExtractor) *ReaderSource {
	return &ReaderSource{
		fetcher:   fetcher,
		extractor: extractor,
	}
}

// Read fetches a page and returns its readable text.
func (s *ReaderSource) Read(ctx context.Context, p ReadParams) (*ArticleText, error) {
	u, err := url.Parse(p.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, invalidInput("url must be an absolute http or https URL")
	}

	maxChars := p.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultReadMaxChars
	}

	body, err := s.fetcher.FetchText(ctx, p.URL, nil)
	if errors.Is(err, fetch.ErrBlockedAddress) {
		return nil, invalidInput("url must point to a public address")
	}
	if err != nil {
		return nil, err
	}

	article, err := s.extractor.Run([]byte(body), p.URL)
	if err != nil {
		return nil, err
	}

	return &ArticleText{
		URL:      p.URL,
		Title:    article.Title,
		Byline:   article.Byline,
		SiteName: article.SiteName,
		Excerpt:  article.Excerpt,
		Length:   utf8.RuneCountInString(article.Text),
		Content:  feed.TruncateWithEllipsis(article.Text, maxChars),
	}, nil
}
