// Package infer assigns coarse semantic type labels to documented parameters.
package infer

import (
	"strings"
	"unicode"

	"github.com/PentesterFlow/apidocs/internal/parser"
)

// Label is an inferred parameter type.
type Label string

// Known labels.
const (
	Bool      Label = "bool"
	Int       Label = "int"
	Color     Label = "color"
	Cursor    Label = "cursor"
	UserID    Label = "user_id"
	UserIDs   Label = "user_ids"
	PlaceID   Label = "place_id"
	PlaceIDs  Label = "place_ids"
	SearchID  Label = "search_id"
	SearchIDs Label = "search_ids"
	StatusID  Label = "status_id"
	StatusIDs Label = "status_ids"
	String    Label = "string"
)

// Labels lists every label Infer can return.
var Labels = []Label{
	Bool, Int, Color, Cursor,
	UserID, UserIDs, PlaceID, PlaceIDs,
	SearchID, SearchIDs, StatusID, StatusIDs,
	String,
}

// Infer picks a label for p. Rules are checked in order and the first
// match wins; all substring checks are case-sensitive.
func Infer(p parser.Parameter) Label {
	if p.Example == "true" || p.Example == "false" {
		return Bool
	}
	if isInteger(p.Example) {
		return Int
	}

	switch {
	case strings.Contains(p.Name, "color"):
		return Color
	case strings.Contains(p.Name, "cursor"):
		return Cursor
	case strings.Contains(p.Name, "count"):
		return Int
	}

	suffix := idSuffix(p.Name)
	if suffix == "" {
		return String
	}

	switch {
	case strings.Contains(p.Name, "user"):
		return Label("user" + suffix)
	case strings.Contains(p.Name, "place"):
		return Label("place" + suffix)
	case strings.Contains(p.Description, "search"):
		return Label("search" + suffix)
	case strings.Contains(p.Description, "media"):
		// Media ids share the search label.
		return Label("search" + suffix)
	default:
		return Label("status" + suffix)
	}
}

// Apply sets Type on every parameter of ep.
func Apply(ep *parser.Endpoint) {
	for i := range ep.Params {
		ep.Params[i].Type = string(Infer(ep.Params[i]))
	}
}

// idSuffix returns "_ids" or "_id" when the name carries one after a
// non-empty prefix.
func idSuffix(name string) string {
	if strings.Index(name, "_ids") > 0 {
		return "_ids"
	}
	if strings.Index(name, "_id") > 0 {
		return "_id"
	}
	return ""
}

// isInteger reports whether s reads as a base-10 integer: optional
// surrounding whitespace and sign, decimal digits of any script, single
// underscores between digits. Magnitude is unbounded.
func isInteger(s string) bool {
	s = strings.TrimSpace(s)
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}

	afterDigit := false
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			afterDigit = true
		case r == '_' && afterDigit:
			afterDigit = false
		default:
			return false
		}
	}
	return afterDigit
}
