// Package semantic matches well-known text shapes (prices, emails, phone
// numbers, dates) in raw text, independent of DOM structure.
package semantic

import (
	"regexp"
	"sort"
	"strings"

	"github.com/use-agent/sift/models"
)

// Pattern is one named text shape with the confidence weight it contributes
// to a detected field.
type Pattern struct {
	Type    string
	Weight  int
	Regexps []*regexp.Regexp
}

// Library is a fixed, ordered table of patterns. It is immutable after
// construction and safe for concurrent use.
type Library struct {
	patterns []Pattern
}

var monthNames = `Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?`

// defaultPatterns is ordered by precision: email > phone > price > date.
var defaultPatterns = []Pattern{
	{
		Type:   models.TypeEmail,
		Weight: 15,
		Regexps: []*regexp.Regexp{
			regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
		},
	},
	{
		Type:   models.TypePhone,
		Weight: 10,
		Regexps: []*regexp.Regexp{
			regexp.MustCompile(`\+?\(?\d[\d\s\-().]{8,}\d`),
			regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`),
		},
	},
	{
		Type:   models.TypePrice,
		Weight: 8,
		Regexps: []*regexp.Regexp{
			regexp.MustCompile(`[$€£¥₹]\s?\d{1,3}(?:[,.]\d{3})*(?:[.,]\d{1,2})?`),
			regexp.MustCompile(`\b\d+(?:[.,]\d{2})?\s?(?:USD|EUR|GBP)\b`),
			regexp.MustCompile(`(?i)\b(?:price|cost|amount|fee):\s*[$€£]?\s?\d+(?:[.,]\d{2})?`),
		},
	},
	{
		Type:   models.TypeDate,
		Weight: 5,
		Regexps: []*regexp.Regexp{
			regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`),
			regexp.MustCompile(`\b\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2}\b`),
			regexp.MustCompile(`(?i)\b(?:` + monthNames + `)\.?\s+\d{1,2},?\s+\d{4}\b`),
		},
	},
}

// Default returns the standard price/email/phone/date library.
func Default() *Library {
	return New(defaultPatterns...)
}

// New builds a library from the given patterns, preserving their order.
func New(patterns ...Pattern) *Library {
	ps := make([]Pattern, len(patterns))
	copy(ps, patterns)
	return &Library{patterns: ps}
}

// Types returns the registered pattern types in table order.
func (l *Library) Types() []string {
	types := make([]string, len(l.patterns))
	for i, p := range l.patterns {
		types[i] = p.Type
	}
	return types
}

// Weight returns the confidence weight of a type, or 0 if unknown.
func (l *Library) Weight(patternType string) int {
	if p, ok := l.lookup(patternType); ok {
		return p.Weight
	}
	return 0
}

// Match applies every pattern to text and returns, per type with at least
// one hit, the trimmed and deduplicated matches in first-seen order.
func (l *Library) Match(text string) map[string][]string {
	out := make(map[string][]string)
	for _, p := range l.patterns {
		if found := matchPattern(p, text); len(found) > 0 {
			out[p.Type] = found
		}
	}
	return out
}

// MatchType applies a single pattern type. Unknown types yield nil.
func (l *Library) MatchType(text, patternType string) []string {
	p, ok := l.lookup(patternType)
	if !ok {
		return nil
	}
	return matchPattern(p, text)
}

func (l *Library) lookup(patternType string) (Pattern, bool) {
	for _, p := range l.patterns {
		if p.Type == patternType {
			return p, true
		}
	}
	return Pattern{}, false
}

type hit struct {
	pos  int
	text string
}

func matchPattern(p Pattern, text string) []string {
	if text == "" {
		return nil
	}

	var hits []hit
	for _, re := range p.Regexps {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			hits = append(hits, hit{pos: loc[0], text: strings.TrimSpace(text[loc[0]:loc[1]])})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]struct{}, len(hits))
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.text == "" {
			continue
		}
		if _, dup := seen[h.text]; dup {
			continue
		}
		seen[h.text] = struct{}{}
		out = append(out, h.text)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
