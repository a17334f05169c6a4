// Package registry holds the static provider tables: upstream endpoints,
// arXiv categories, news feeds and the AI keyword list.
package registry

import (
	_ "embed"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// AllFeeds selects every registered feed.
const AllFeeds = "all"

//go:embed registry.yml
var defaultRegistry []byte

// Registry is an immutable lookup table. Accessors return copies so
// callers cannot mutate shared state.
type Registry struct {
	endpoints  Endpoints
	categories []Category
	feeds      []Feed
	feedIndex  map[string]int
	keywords   []string
}

// Load reads the registry from path, or the embedded default when path is
// empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Parse(defaultRegistry)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid registry %s: %w", path, err)
	}

	slog.Debug("Registry loaded", "path", path, "feeds", len(reg.feeds), "categories", len(reg.categories))
	return reg, nil
}

// Default returns the embedded registry.
func Default() *Registry {
	reg, err := Parse(defaultRegistry)
	if err != nil {
		panic(fmt.Sprintf("embedded registry is invalid: %v", err))
	}
	return reg
}

func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return New(doc.Endpoints, doc.Categories, doc.Feeds, doc.Keywords)
}

// New builds a registry from explicit tables. Tests use it to substitute
// local endpoints and feeds.
func New(endpoints Endpoints, categories []Category, feeds []Feed, keywords []string) (*Registry, error) {
	reg := &Registry{
		endpoints:  endpoints,
		categories: slices.Clone(categories),
		feeds:      slices.Clone(feeds),
		feedIndex:  make(map[string]int, len(feeds)),
		keywords:   slices.Clone(keywords),
	}

	if err := reg.validate(); err != nil {
		return nil, err
	}

	for i, feed := range reg.feeds {
		reg.feedIndex[feed.Key] = i
	}

	return reg, nil
}

func (r *Registry) Endpoints() Endpoints {
	return r.endpoints
}

func (r *Registry) Categories() []Category {
	return slices.Clone(r.categories)
}

func (r *Registry) CategoryCodes() []string {
	codes := make([]string, 0, len(r.categories))
	for _, category := range r.categories {
		codes = append(codes, category.Code)
	}
	return codes
}

func (r *Registry) HasCategory(code string) bool {
	return slices.ContainsFunc(r.categories, func(c Category) bool { return c.Code == code })
}

// Feeds returns the feeds in registry order.
func (r *Registry) Feeds() []Feed {
	return slices.Clone(r.feeds)
}

func (r *Registry) Feed(key string) (Feed, bool) {
	i, ok := r.feedIndex[key]
	if !ok {
		return Feed{}, false
	}
	return r.feeds[i], true
}

// FeedKeys returns the feed keys in registry order.
func (r *Registry) FeedKeys() []string {
	keys := make([]string, 0, len(r.feeds))
	for _, feed := range r.feeds {
		keys = append(keys, feed.Key)
	}
	return keys
}

func (r *Registry) Keywords() []string {
	return slices.Clone(r.keywords)
}

// Hosts returns the distinct hosts of every endpoint and feed.
func (r *Registry) Hosts() []string {
	urls := []string{r.endpoints.Arxiv, r.endpoints.HackerNews, r.endpoints.DevTo}
	for _, feed := range r.feeds {
		urls = append(urls, feed.URL)
	}

	var hosts []string
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || slices.Contains(hosts, u.Host) {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}

func (r *Registry) validate() error {
	requiredEndpoints := []struct {
		name  string
		value string
	}{
		{"arxiv endpoint", r.endpoints.Arxiv},
		{"hackernews endpoint", r.endpoints.HackerNews},
		{"hackernews discussion endpoint", r.endpoints.HackerNewsDiscussion},
		{"devto endpoint", r.endpoints.DevTo},
	}

	for _, endpoint := range requiredEndpoints {
		if err := validateURL(endpoint.name, endpoint.value); err != nil {
			return err
		}
	}

	if len(r.categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	for i, category := range r.categories {
		if category.Code == "" {
			return fmt.Errorf("category at index %d has no code", i)
		}
	}

	seen := make(map[string]bool, len(r.feeds))
	for i, feed := range r.feeds {
		if feed.Key == "" {
			return fmt.Errorf("feed at index %d has no key", i)
		}
		if feed.Key == AllFeeds {
			return fmt.Errorf("feed key '%s' is reserved", AllFeeds)
		}
		if seen[feed.Key] {
			return fmt.Errorf("duplicate feed key '%s'", feed.Key)
		}
		seen[feed.Key] = true

		if feed.Name == "" {
			return fmt.Errorf("feed '%s' has no name", feed.Key)
		}
		if err := validateURL(fmt.Sprintf("feed '%s' URL", feed.Key), feed.URL); err != nil {
			return err
		}
	}

	for i, keyword := range r.keywords {
		if keyword == "" {
			return fmt.Errorf("keyword at index %d is empty", i)
		}
	}

	return nil
}

func validateURL(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", name, u.Scheme)
	}
	return nil
}
