package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelector matches elements whose text is never visible content.
const noiseSelector = "script, style, noscript, template"

// VisibleText returns the body text of a selection with script/style content
// removed. The selection is cloned, so the document is left untouched.
func VisibleText(s *goquery.Selection) string {
	clone := s.Clone()
	clone.Find(noiseSelector).Remove()

	var buf strings.Builder
	clone.Each(func(_ int, el *goquery.Selection) {
		collectText(el, &buf)
	})
	return strings.TrimSpace(buf.String())
}

// BodyText returns the visible text of the document body, or of the whole
// document when there is no body element.
func BodyText(doc *goquery.Document) string {
	body := doc.Find("body")
	if body.Length() == 0 {
		return VisibleText(doc.Selection)
	}
	return VisibleText(body)
}

// collectText writes each text node followed by a space so that adjacent
// block elements do not glue their words together.
func collectText(s *goquery.Selection, buf *strings.Builder) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			if t := strings.TrimSpace(c.Text()); t != "" {
				buf.WriteString(t)
				buf.WriteByte(' ')
			}
			return
		}
		collectText(c, buf)
	})
}
