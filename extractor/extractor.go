package extractor

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/sift/dom"
	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/semantic"
)

// Extractor applies field rules to parsed documents. It holds no mutable
// state and is safe for concurrent use.
type Extractor struct {
	library *semantic.Library
}

// New creates an Extractor. A nil library uses the default patterns.
func New(library *semantic.Library) *Extractor {
	if library == nil {
		library = semantic.Default()
	}
	return &Extractor{library: library}
}

// Extract classifies doc and builds records with the chosen regime. Every
// field passed in is applied; when two fields share a name the first one
// with a value owns the key. The result is never nil; no matches yields
// an empty slice.
func (e *Extractor) Extract(doc *goquery.Document, fields []models.DetectedField) ([]models.Record, Regime) {
	decision := Classify(doc)

	var records []models.Record
	switch decision.Regime {
	case RegimeDirectory:
		records = e.directory(doc, decision.Directory)
	case RegimeContainer:
		records = e.containers(doc, decision.Container, fields)
	case RegimeTable:
		records = Table(doc.Find("table").First())
	case RegimeList:
		records = e.list(doc, fields)
	default:
		records = e.individual(doc, fields)
	}
	if records == nil {
		records = []models.Record{}
	}

	slog.Debug("extract: records built",
		"regime", decision.Regime,
		"container", decision.Container,
		"fields", len(fields),
		"records", len(records),
	)
	return records, decision.Regime
}

// directory uses the fixed sub-selectors of a specialized directory. The
// caller's fields are not consulted.
func (e *Extractor) directory(doc *goquery.Document, dir *dom.Directory) []models.Record {
	var records []models.Record
	doc.Find(dir.Container).Each(func(_ int, c *goquery.Selection) {
		rec := models.NewRecord()
		for _, f := range dir.Fields {
			if values := dom.Values(c.Find(f.CSS), f.Type); len(values) > 0 {
				rec.Set(f.Name, valueOf(values))
			}
		}
		if rec.Len() > 0 {
			records = append(records, rec)
		}
	})
	return records
}

// containers evaluates each field inside each record container. Containers
// that yield nothing are dropped.
func (e *Extractor) containers(doc *goquery.Document, css string, fields []models.DetectedField) []models.Record {
	var records []models.Record
	dom.Outermost(doc.Find(css), css).Each(func(_ int, c *goquery.Selection) {
		if rec, ok := e.scopedRecord(c, fields, false); ok {
			records = append(records, rec)
		}
	})
	return records
}

// list treats every outermost list item as a record. Items of nested lists
// stay part of their parent item.
func (e *Extractor) list(doc *goquery.Document, fields []models.DetectedField) []models.Record {
	var records []models.Record
	dom.Outermost(doc.Find("li"), "li").Each(func(_ int, item *goquery.Selection) {
		if rec, ok := e.scopedRecord(item, fields, true); ok {
			records = append(records, rec)
		}
	})
	return records
}

// scopedRecord builds one record from a container. With matchSelf, a simple
// selector that matches the container itself yields the container's value.
func (e *Extractor) scopedRecord(c *goquery.Selection, fields []models.DetectedField, matchSelf bool) (models.Record, bool) {
	rec := models.NewRecord()
	var text string
	for _, f := range fields {
		if _, taken := rec.Get(f.Name); taken {
			continue
		}
		for _, sel := range f.Selectors {
			var values []string
			if sel.IsSemantic() {
				if text == "" {
					text = dom.VisibleText(c)
				}
				values = e.library.MatchType(text, sel.Pattern)
			} else {
				css := dom.SplitScope(sel).CSS
				if css == "" {
					continue
				}
				if matchSelf && !hasCombinator(css) && c.Is(css) {
					values = dom.Values(c, f.Type)
				} else {
					values = dom.Values(c.Find(css), f.Type)
				}
			}
			if len(values) > 0 {
				rec.Set(f.Name, valueOf(values))
				break
			}
		}
	}
	return rec, rec.Len() > 0
}

// individual evaluates each field against the whole page and zips the value
// lists by index. Records stop at the longest list; shorter fields are
// absent from trailing records.
func (e *Extractor) individual(doc *goquery.Document, fields []models.DetectedField) []models.Record {
	var bodyText string
	columns := make([][]string, len(fields))
	longest := 0
	for i, f := range fields {
		for _, sel := range f.Selectors {
			var values []string
			if sel.IsSemantic() {
				if bodyText == "" {
					bodyText = dom.BodyText(doc)
				}
				values = e.library.MatchType(bodyText, sel.Pattern)
			} else if sel.Full() != "" {
				values = dom.Values(doc.Find(sel.Full()), f.Type)
			}
			if len(values) > 0 {
				columns[i] = values
				break
			}
		}
		if len(columns[i]) > longest {
			longest = len(columns[i])
		}
	}

	records := make([]models.Record, 0, longest)
	for idx := 0; idx < longest; idx++ {
		rec := models.NewRecord()
		for i, f := range fields {
			if _, taken := rec.Get(f.Name); taken {
				continue
			}
			if idx < len(columns[i]) {
				rec.Set(f.Name, models.Scalar(columns[i][idx]))
			}
		}
		records = append(records, rec)
	}
	return records
}

// valueOf returns a scalar for one match and a list for several.
func valueOf(values []string) models.Value {
	if len(values) == 1 {
		return models.Scalar(values[0])
	}
	return models.Value(values)
}

// hasCombinator reports whether a CSS selector relates more than one
// compound selector. Commas count too, since a group never describes the
// item alone.
func hasCombinator(css string) bool {
	depth := 0
	quote := rune(0)
	for _, r := range strings.TrimSpace(css) {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[' || r == '(':
			depth++
		case r == ']' || r == ')':
			depth--
		case depth == 0 && (r == ' ' || r == '>' || r == '+' || r == '~' || r == ','):
			return true
		}
	}
	return false
}
