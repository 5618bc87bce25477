package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// textFragments returns every text node under the selection, in document order.
func textFragments(s *goquery.Selection) []string {
	fragments := make([]string, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			fragments = append(fragments, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range s.Nodes {
		walk(n)
	}
	return fragments
}

// strippedFragments is textFragments with each fragment trimmed and
// whitespace-only fragments removed.
func strippedFragments(s *goquery.Selection) []string {
	fragments := textFragments(s)
	stripped := fragments[:0]
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			stripped = append(stripped, f)
		}
	}
	return stripped
}

// joinedText concatenates all text fragments without separators.
func joinedText(s *goquery.Selection) string {
	return strings.Join(textFragments(s), "")
}
