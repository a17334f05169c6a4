package feed

import "cmp"

const (
	TypePDF  = "application/pdf"
	TypeHTML = "text/html"
)

// Link is either a bare string link or an attributed link element.
type Link struct {
	Href string
	Type string
	Rel  string
}

// Links reads every link in a repeatable link field.
func Links(v *Value) []Link {
	nodes := AsList(v)
	links := make([]Link, 0, len(nodes))

	for _, node := range nodes {
		link := Link{
			Href: cmp.Or(node.Attrs["href"], node.Text),
			Type: node.Attrs["type"],
			Rel:  node.Attrs["rel"],
		}
		if link.Href == "" {
			continue
		}
		links = append(links, link)
	}

	return links
}

// FindLink returns the first link matching match.
func FindLink(links []Link, match func(Link) bool) (Link, bool) {
	for _, link := range links {
		if match(link) {
			return link, true
		}
	}
	return Link{}, false
}

func IsPDF(link Link) bool {
	return link.Type == TypePDF
}

// IsPage reports whether the link points at a human-readable page.
func IsPage(link Link) bool {
	return link.Type == "" || link.Type == TypeHTML
}

// PreferredLink picks the alternate (or rel-less) link, else the first one.
func PreferredLink(links []Link) string {
	if link, ok := FindLink(links, func(l Link) bool { return l.Rel == "" || l.Rel == "alternate" }); ok {
		return link.Href
	}
	if len(links) > 0 {
		return links[0].Href
	}
	return ""
}
