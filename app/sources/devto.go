package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/fetch"
	"github.com/lysyi3m/news-comb/app/registry"
)

const (
	devToSource          = "DEV.to"
	maxDescriptionLength = 300
)

type devToUser struct {
	Name     *string `json:"name"`
	Username string  `json:"username"`
}

type devToArticle struct {
	Title                string     `json:"title"`
	User                 *devToUser `json:"user"`
	TagList              tagList    `json:"tag_list"`
	Description          string     `json:"description"`
	PublicReactionsCount int        `json:"public_reactions_count"`
	CommentsCount        int        `json:"comments_count"`
	ReadingTimeMinutes   int        `json:"reading_time_minutes"`
	PublishedAt          *string    `json:"published_at"`
	URL                  string     `json:"url"`
}

// tagList accepts either a JSON array or a comma separated string.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		tags := []string{}
		for _, tag := range strings.Split(joined, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
		*t = tags
		return nil
	}

	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return fmt.Errorf("tag_list: %w", err)
	}
	*t = tags
	return nil
}

type DevToSource struct {
	fetcher  Fetcher
	registry *registry.Registry
}

func NewDevToSource(fetcher Fetcher, reg *registry.Registry) *DevToSource {
	return &DevToSource{
		fetcher:  fetcher,
		registry: reg,
	}
}

// Articles returns the top DEV.to articles for a tag.
func (s *DevToSource) Articles(ctx context.Context, p ArticleParams) (*ArticleResult, error) {
	var raw []devToArticle
	err := s.fetcher.FetchJSON(ctx, s.registry.Endpoints().DevTo, fetch.Params{
		"tag":      p.Tag,
		"per_page": p.MaxResults,
		"top":      1,
	}, &raw)
	if err != nil {
		return nil, err
	}

	raw = raw[:min(p.MaxResults, len(raw))]

	articles := make([]ArticleItem, 0, len(raw))
	for _, item := range raw {
		articles = append(articles, articleOf(item))
	}

	return &ArticleResult{
		Source:   devToSource,
		Tag:      p.Tag,
		Count:    len(articles),
		Articles: articles,
	}, nil
}

func articleOf(item devToArticle) ArticleItem {
	article := ArticleItem{
		Title:              item.Title,
		Author:             "Unknown",
		Tags:               []string(item.TagList),
		ReactionsCount:     item.PublicReactionsCount,
		CommentsCount:      item.CommentsCount,
		ReadingTimeMinutes: item.ReadingTimeMinutes,
		PublishedAt:        "Unknown",
		URL:                item.URL,
	}

	article.Description, _ = feed.Truncate(item.Description, maxDescriptionLength)

	if item.User != nil {
		if item.User.Name != nil {
			article.Author = *item.User.Name
		}
		article.AuthorUsername = item.User.Username
	}
	if item.PublishedAt != nil {
		article.PublishedAt = *item.PublishedAt
	}
	if article.Tags == nil {
		article.Tags = []string{}
	}

	return article
}
