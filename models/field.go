package models

import (
	"encoding/json"
	"strings"
)

// Conventional field types. The vocabulary is open: detectors may emit
// domain-specific labels, and callers may send any string.
const (
	TypeTitle       = "title"
	TypePrice       = "price"
	TypeDate        = "date"
	TypeEmail       = "email"
	TypePhone       = "phone"
	TypeLocation    = "location"
	TypeImage       = "image"
	TypeLink        = "link"
	TypeDescription = "description"
	TypeHeading     = "heading"
	TypeTable       = "table"
	TypeList        = "list"
	TypeCountry     = "country"
	TypeCapital     = "capital"
	TypePopulation  = "population"
	TypeArea        = "area"
)

// Wire prefixes for semantic-pattern selectors.
const (
	textPatternPrefix = "text-pattern:"
	semanticPrefix    = "semantic:"
)

// SelectorKind distinguishes DOM selectors from regex text patterns.
type SelectorKind int

const (
	// SelectorStructural is a CSS selector evaluated against the DOM.
	SelectorStructural SelectorKind = iota
	// SelectorSemantic names a semantic text pattern evaluated against raw text.
	SelectorSemantic
)

// Selector is one extraction rule of a DetectedField.
//
// A structural selector may carry a Scope: the container selector it was
// discovered under. On the wire it is rendered as "<scope> <css>".
type Selector struct {
	Kind    SelectorKind
	Scope   string
	CSS     string
	Pattern string
}

// Structural returns a page-level CSS selector.
func Structural(css string) Selector {
	return Selector{Kind: SelectorStructural, CSS: strings.TrimSpace(css)}
}

// Scoped returns a CSS selector discovered inside the given container selector.
func Scoped(scope, css string) Selector {
	return Selector{Kind: SelectorStructural, Scope: strings.TrimSpace(scope), CSS: strings.TrimSpace(css)}
}

// SemanticPattern returns a selector that matches a semantic text pattern type.
func SemanticPattern(patternType string) Selector {
	return Selector{Kind: SelectorSemantic, Pattern: patternType}
}

// ParseSelector decodes the wire form. "text-pattern:<type>" and
// "semantic:<type>" become semantic selectors; anything else is CSS.
func ParseSelector(s string) Selector {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, textPatternPrefix):
		return SemanticPattern(strings.TrimPrefix(s, textPatternPrefix))
	case strings.HasPrefix(s, semanticPrefix):
		return SemanticPattern(strings.TrimPrefix(s, semanticPrefix))
	default:
		return Structural(s)
	}
}

// IsSemantic reports whether the selector is a text pattern.
func (s Selector) IsSemantic() bool { return s.Kind == SelectorSemantic }

// Full returns the page-level CSS for a structural selector.
func (s Selector) Full() string {
	if s.Scope == "" {
		return s.CSS
	}
	return s.Scope + " " + s.CSS
}

// String renders the wire form.
func (s Selector) String() string {
	if s.IsSemantic() {
		return textPatternPrefix + s.Pattern
	}
	return s.Full()
}

func (s Selector) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Selector) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = ParseSelector(raw)
	return nil
}

// DetectedField is a proposed or confirmed extraction rule.
type DetectedField struct {
	ID         string     `json:"id"`
	Name       string     `json:"name" binding:"required"`
	Type       string     `json:"type"`
	Selectors  []Selector `json:"selectors" binding:"required,min=1"`
	Elements   int        `json:"elements"`
	SampleData []string   `json:"sample_data"`
	Confidence int        `json:"confidence"`
	Selected   bool       `json:"selected"`
}

// Key is the deduplication key: two fields with the same key are never
// both retained.
func (f DetectedField) Key() string {
	return f.Type + "_" + f.Name
}
