package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/PentesterFlow/apidocs/internal/errors"
)

const referenceMarker = "/reference"

// ParseListing extracts reference page paths from the navigation leaves of a
// listing page. Every leaf must start with a child element carrying an href.
func ParseListing(doc *goquery.Document, sel Selectors) ([]string, error) {
	paths := make([]string, 0)

	var failure error
	doc.Find(class(sel.Leaf)).EachWithBreak(func(i int, leaf *goquery.Selection) bool {
		first := leaf.Children().First()
		if first.Length() == 0 {
			failure = errors.NewStructureError("", "list_endpoints",
				fmt.Sprintf("leaf %d has no child element", i))
			return false
		}

		href, ok := first.Attr("href")
		if !ok {
			failure = errors.NewStructureError("", "list_endpoints",
				fmt.Sprintf("leaf %d first child has no href", i))
			return false
		}

		if IsReferencePath(href) {
			paths = append(paths, NormalizePath(href))
		}
		return true
	})
	if failure != nil {
		return nil, failure
	}

	return paths, nil
}

// IsReferencePath reports whether href contains the reference marker after
// its first character. A leading marker does not count.
func IsReferencePath(href string) bool {
	return strings.Index(href, referenceMarker) > 0
}

// NormalizePath undoes the percent-encoded colons in listing hrefs.
func NormalizePath(href string) string {
	return strings.ReplaceAll(href, "%3A", ":")
}
