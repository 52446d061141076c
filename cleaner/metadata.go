// Package cleaner derives page-level metadata and validates user-supplied
// selectors before any network work happens.
package cleaner

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/sift/dom"
	"github.com/use-agent/sift/models"
)

// maxDescriptionLength bounds descriptions taken from body paragraphs.
const maxDescriptionLength = 300

// PageInfo builds the page summary for an analyzed document. fetchedTitle
// is the title seen by the fetch engine and may be empty.
func PageInfo(doc *goquery.Document, rawHTML, pageURL, fetchedTitle string) models.PageInfo {
	return models.PageInfo{
		URL:         pageURL,
		Title:       pageTitle(doc, fetchedTitle),
		Domain:      Domain(pageURL),
		Description: pageDescription(doc, rawHTML, pageURL),
		Type:        models.PageTypeAnalyzed,
	}
}

// Domain returns the lower-cased hostname of rawURL, or "" if it has none.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func pageTitle(doc *goquery.Document, fetchedTitle string) string {
	if t := strings.TrimSpace(fetchedTitle); t != "" {
		return t
	}
	if t := dom.Text(doc.Find("title").First()); t != "" {
		return t
	}
	if t := metaContent(doc, `meta[property="og:title"]`); t != "" {
		return t
	}
	if t := dom.Text(doc.Find("h1, h2, h3").First()); t != "" {
		return t
	}
	return models.UntitledPage
}

func pageDescription(doc *goquery.Document, rawHTML, pageURL string) string {
	if d := metaContent(doc, `meta[name="description"]`); d != "" {
		return d
	}
	if d := metaContent(doc, `meta[property="og:description"]`); d != "" {
		return d
	}
	if d, ok := Excerpt(rawHTML, pageURL); ok {
		return truncate(d, maxDescriptionLength)
	}

	var first string
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		first = dom.Text(p)
		return first == ""
	})
	if first != "" {
		return truncate(first, maxDescriptionLength)
	}
	return models.NoDescriptionFound
}

func metaContent(doc *goquery.Document, css string) string {
	content, _ := doc.Find(css).First().Attr("content")
	return strings.Join(strings.Fields(content), " ")
}

// truncate cuts s to at most n runes, on a word boundary when possible.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
