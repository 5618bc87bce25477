package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/PentesterFlow/apidocs/internal/errors"
)

const (
	requiredMarker = "required"
	exampleMarker  = "Example"
)

// EndpointParser extracts endpoint metadata from reference pages.
type EndpointParser struct {
	sel Selectors
}

// NewEndpointParser creates a parser using the given class markers.
func NewEndpointParser(sel Selectors) *EndpointParser {
	return &EndpointParser{sel: sel}
}

// Parse extracts one endpoint from a reference page. A page missing its
// heading, URL field or parameters region fails as a whole, as does a
// parameter with no text at all; a parameter missing its description is
// dropped and reported as a Diagnostic.
func (p *EndpointParser) Parse(doc *goquery.Document) (*Endpoint, []Diagnostic, error) {
	ep := &Endpoint{Params: make([]Parameter, 0)}

	heading := doc.Find("h1").First()
	if heading.Length() == 0 {
		return nil, nil, errors.NewStructureError("", "parse_heading", "no h1 element")
	}
	tokens := strings.Split(strings.TrimSpace(joinedText(heading)), " ")
	if len(tokens) < 2 {
		return nil, nil, errors.NewStructureError("", "parse_heading",
			fmt.Sprintf("heading %q has fewer than two tokens", strings.Join(tokens, " ")))
	}
	ep.Method = tokens[0]
	ep.Path = tokens[1]

	urlRegion := doc.Find(class(p.sel.URLRegion)).First()
	if urlRegion.Length() == 0 {
		return nil, nil, errors.NewStructureError("", "parse_url", "no "+p.sel.URLRegion+" region")
	}
	urlItem := urlRegion.Find(class(p.sel.URLItem)).First()
	if urlItem.Length() == 0 {
		return nil, nil, errors.NewStructureError("", "parse_url", "no "+p.sel.URLItem+" in url region")
	}
	ep.URL = urlItem.Text()

	paramsRegion := doc.Find(class(p.sel.ParamsRoot)).First()
	if paramsRegion.Length() == 0 {
		return nil, nil, errors.NewStructureError(ep.URL, "parse_params", "no "+p.sel.ParamsRoot+" region")
	}

	diagnostics := make([]Diagnostic, 0)
	var failure error
	paramsRegion.Find(class(p.sel.Param)).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if _, ok := parameterName(s); !ok {
			failure = errors.NewStructureError(ep.URL, "parse_parameter",
				fmt.Sprintf("parameter %d has no name text", i))
			return false
		}

		param, err := ParseParameter(s)
		if err != nil {
			diagnostics = append(diagnostics, Diagnostic{URL: ep.URL, Err: err})
			return true
		}
		ep.Params = append(ep.Params, param)
		return true
	})
	if failure != nil {
		return nil, nil, failure
	}

	return ep, diagnostics, nil
}

// ParseParameter extracts one parameter descriptor. It fails when the
// element has no name text or no description paragraph.
func ParseParameter(s *goquery.Selection) (Parameter, error) {
	var param Parameter

	name, ok := parameterName(s)
	if !ok {
		return param, errors.NewStructureError("", "parse_parameter", "parameter has no name text")
	}
	param.Name = name

	label := s.Find("span").First()
	if inner := label.Find("span").First(); inner.Length() > 0 {
		param.Required = inner.Text() == requiredMarker
	}

	paragraphs := s.Find("p")
	if paragraphs.Length() == 0 {
		return param, errors.NewStructureError("", "parse_parameter",
			fmt.Sprintf("parameter %q has no description paragraph", param.Name))
	}
	param.Description = joinedText(paragraphs.First())

	if paragraphs.Length() > 1 {
		param.Example = exampleValue(paragraphs.Last())
	}

	return param, nil
}

// parameterName returns the first non-blank text fragment of s.
func parameterName(s *goquery.Selection) (string, bool) {
	names := strippedFragments(s)
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// exampleValue returns the inline code of an "Example" paragraph, or "".
func exampleValue(p *goquery.Selection) string {
	strong := p.Find("strong").First()
	code := p.Find("code").First()
	if strong.Length() == 0 || code.Length() == 0 {
		return ""
	}
	if !strings.Contains(joinedText(strong), exampleMarker) {
		return ""
	}
	return strings.Join(strippedFragments(code), "")
}
