package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Channel describes the RSS document written by Generator.
type Channel struct {
	Title       string
	Link        string
	SelfLink    string
	Description string
	Generator   string
	BuildDate   time.Time
}

type ChannelItem struct {
	Title       string
	Link        string
	Description string
	Published   string
	Category    string
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders an RSS 2.0 document. Published values that parse as a known
// date layout are rewritten as RFC 1123Z; anything else is dropped.
func (g *Generator) Run(channel Channel, items []ChannelItem) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channel.Title, 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "description", channel.Description, 4)

	if channel.SelfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(channel.SelfLink)))
	}

	buildDate := channel.BuildDate
	if buildDate.IsZero() {
		buildDate = time.Now().UTC()
	}
	g.writeElement(&buf, "lastBuildDate", buildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", channel.Generator, 4)

	for _, item := range items {
		g.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String()
}

func (g *Generator) writeItem(buf *bytes.Buffer, item ChannelItem) {
	buf.WriteString("    <item>\n")

	if item.Link != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(item.Link)))
		xml.EscapeText(buf, []byte(item.Link))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", item.Title, 6)
	g.writeElement(buf, "link", item.Link, 6)
	g.writeElement(buf, "description", item.Description, 6)

	if published, ok := ParseDate(item.Published); ok {
		g.writeElement(buf, "pubDate", published.Format(time.RFC1123Z), 6)
	}

	g.writeElement(buf, "category", item.Category, 6)

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ParseDate accepts any date format feeds commonly publish.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
