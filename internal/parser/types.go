package parser

import "fmt"

// Endpoint represents one documented API call.
type Endpoint struct {
	URL    string
	Path   string
	Method string
	Params []Parameter
}

// Parameter represents one documented request parameter.
type Parameter struct {
	Name        string
	Required    bool
	Description string
	Example     string
	Type        string
}

// Diagnostic records a parameter that was dropped during extraction.
type Diagnostic struct {
	URL string
	Err error
}

// String renders the diagnostic as a single human-readable line.
func (d Diagnostic) String() string {
	return fmt.Sprintf("Check %s, got error %v", d.URL, d.Err)
}

// Selectors holds the class markers used to locate page regions.
type Selectors struct {
	Leaf       string `json:"leaf" yaml:"leaf"`
	URLRegion  string `json:"url_region" yaml:"url_region"`
	URLItem    string `json:"url_item" yaml:"url_item"`
	ParamsRoot string `json:"params_region" yaml:"params_region"`
	Param      string `json:"param" yaml:"param"`
}

// DefaultSelectors returns the markers used by the Twitter REST docs.
func DefaultSelectors() Selectors {
	return Selectors{
		Leaf:       "leaf",
		URLRegion:  "Node-apiDocsUrl",
		URLItem:    "Field-items-item",
		ParamsRoot: "Node-apiDocsParams",
		Param:      "parameter",
	}
}

// Validate checks that every marker is set.
func (s Selectors) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"leaf", s.Leaf},
		{"url_region", s.URLRegion},
		{"url_item", s.URLItem},
		{"params_region", s.ParamsRoot},
		{"param", s.Param},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("selector %s is required", f.name)
		}
	}
	return nil
}

func class(name string) string {
	return "." + name
}
