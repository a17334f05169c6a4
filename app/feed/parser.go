package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"log/slog"

	"github.com/mmcdole/gofeed"
)

var (
	summaryFields   = []string{"description", "summary", "content:encoded", "content"}
	publishedFields = []string{"pubDate", "published", "updated", "dc:date"}
)

// Entry is one item of an RSS or Atom document. Summary is kept as
// published by the feed, HTML included.
type Entry struct {
	Title     string
	Summary   string
	Published string
	Link      string
}

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run extracts entries from rss.channel.item or feed.entry. Documents in
// neither shape go through gofeed's universal parser.
func (p *Parser) Run(data []byte) ([]Entry, error) {
	doc, err := DecodeXML(bytes.NewReader(data))
	if err == nil {
		if channel := doc.Path("rss", "channel"); channel != nil {
			return entriesOf(channel.Field("item")), nil
		}
		if atom := doc.Field("feed"); atom != nil {
			return entriesOf(atom.Field("entry")), nil
		}
	}

	parsed, fallbackErr := p.gofeedParser.Parse(bytes.NewReader(data))
	if fallbackErr != nil {
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed: %w", err)
		}
		return nil, fmt.Errorf("failed to parse feed: %w", fallbackErr)
	}

	slog.Debug("Feed parsed with fallback parser", "type", parsed.FeedType, "items", len(parsed.Items))

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, Entry{
			Title:     item.Title,
			Summary:   cmp.Or(item.Description, item.Content),
			Published: cmp.Or(item.Published, item.Updated),
			Link:      item.Link,
		})
	}

	return entries, nil
}

func entriesOf(items *Value) []Entry {
	nodes := AsList(items)
	entries := make([]Entry, 0, len(nodes))

	for _, node := range nodes {
		entries = append(entries, Entry{
			Title:     node.Field("title").String(),
			Summary:   firstText(node, summaryFields),
			Published: firstText(node, publishedFields),
			Link:      PreferredLink(Links(node.Field("link"))),
		})
	}

	return entries
}

func firstText(node *Value, fields []string) string {
	for _, name := range fields {
		if text := node.Field(name).String(); text != "" {
			return text
		}
	}
	return ""
}
