// Package dom holds the DOM helpers shared by detection and extraction:
// the type-specific value rule, the fixed selector catalogs and visible
// text collection.
package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/sift/models"
)

// ValueOf returns the value of a single element according to the field type:
// images prefer src, then data-src, then alt; links prefer href, then text;
// everything else is the trimmed text content.
func ValueOf(s *goquery.Selection, fieldType string) string {
	switch fieldType {
	case models.TypeImage:
		for _, attr := range []string{"src", "data-src", "alt"} {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	case models.TypeLink:
		if href, ok := s.Attr("href"); ok && strings.TrimSpace(href) != "" {
			return strings.TrimSpace(href)
		}
		return Text(s)
	default:
		return Text(s)
	}
}

// Values applies ValueOf to every element of the selection and drops empty
// results.
func Values(s *goquery.Selection, fieldType string) []string {
	var out []string
	s.Each(func(_ int, el *goquery.Selection) {
		if v := ValueOf(el, fieldType); v != "" {
			out = append(out, v)
		}
	})
	return out
}

// FirstValue returns the first non-empty value in the selection.
func FirstValue(s *goquery.Selection, fieldType string) string {
	var out string
	s.EachWithBreak(func(_ int, el *goquery.Selection) bool {
		out = ValueOf(el, fieldType)
		return out == ""
	})
	return out
}

// Text returns the element text with surrounding whitespace removed and
// inner whitespace runs collapsed to single spaces.
func Text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
