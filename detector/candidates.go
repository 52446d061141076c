package detector

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/sift/dom"
	"github.com/use-agent/sift/models"
)

// containerFields probes each container pattern with the role catalog.
// The first container is the structural probe; values are then collected
// from every container and the field is kept only above the coverage floor.
func (d *Detector) containerFields(patterns []ContainerPattern) []models.DetectedField {
	var fields []models.DetectedField
	for _, p := range patterns {
		total := p.Len()
		probe := p.Elements.First()

		for _, r := range roleCatalog {
			css, ok := probeRole(probe, r)
			if !ok {
				continue
			}

			var values []string
			p.Elements.Each(func(_ int, container *goquery.Selection) {
				if v := dom.FirstValue(container.Find(css), r.Type); v != "" {
					values = append(values, v)
				}
			})

			found := len(values)
			if float64(found) < d.weights.coverageFloor(total) {
				continue
			}

			samples := d.samples(values)
			fieldType, name := refineType(r.Type, nameFor(r, p.Hint), samples, d.library)
			fields = append(fields, models.DetectedField{
				Name:       name,
				Type:       fieldType,
				Selectors:  []models.Selector{models.Scoped(p.Selector, css)},
				Elements:   found,
				SampleData: samples,
				Confidence: d.weights.containerConfidence(found, total, r.Priority, p.Weight),
			})
		}
	}
	return fields
}

// probeRole returns the first role selector present in the probe container.
func probeRole(probe *goquery.Selection, r role) (string, bool) {
	for _, css := range r.Selectors {
		if probe.Find(css).Length() > 0 {
			return css, true
		}
	}
	return "", false
}

// pageSignalFields emits low-specificity fallbacks from page-wide content
// signals so that pages without repeating containers still get proposals.
func (d *Detector) pageSignalFields(doc *goquery.Document) []models.DetectedField {
	var fields []models.DetectedField
	w := d.weights

	signal := func(name, fieldType, css string, sel *goquery.Selection, confidence int) {
		fields = append(fields, models.DetectedField{
			Name:       name,
			Type:       fieldType,
			Selectors:  []models.Selector{models.Structural(css)},
			Elements:   sel.Length(),
			SampleData: d.samples(dom.Values(sel, fieldType)),
			Confidence: confidence,
		})
	}

	if prices := doc.Find(`[class*="price"]`); prices.Length() > 0 {
		signal("Price", models.TypePrice, `[class*="price"]`, prices, w.PriceSignalConfidence)
	}
	if images := doc.Find("img[src]"); images.Length() >= w.MinSignalImages {
		signal("Image", models.TypeImage, "img[src]", images, w.ImageSignalConfidence)
	}
	if links := doc.Find("a[href]"); links.Length() >= w.MinSignalLinks {
		signal("Link", models.TypeLink, "a[href]", links, w.LinkSignalConfidence)
	}

	tables := doc.Find("table").FilterFunction(func(_ int, t *goquery.Selection) bool {
		return t.Find("th").Length() > 0
	})
	if tables.Length() > 0 {
		fields = append(fields, models.DetectedField{
			Name:       "Table Data",
			Type:       models.TypeTable,
			Selectors:  []models.Selector{models.Structural("table")},
			Elements:   tables.Find("tr").Length(),
			SampleData: d.samples(dom.Values(tables.First().Find("th"), models.TypeTable)),
			Confidence: w.TableSignalConfidence,
		})
	}

	if headings := doc.Find("h1, h2, h3"); headings.Length() >= w.MinSignalHeadings {
		signal("Heading", models.TypeHeading, "h1, h2, h3", headings, w.HeadingSignalConfidence)
	}
	return fields
}

// semanticFields runs the semantic pattern library over the visible body
// text and emits one field per type with at least one match.
func (d *Detector) semanticFields(bodyText string) []models.DetectedField {
	matches := d.library.Match(bodyText)

	var fields []models.DetectedField
	for _, t := range d.library.Types() {
		found := matches[t]
		if len(found) == 0 {
			continue
		}
		name, ok := defaultNames[t]
		if !ok {
			name = capitalize(t)
		}
		fields = append(fields, models.DetectedField{
			Name:       name,
			Type:       t,
			Selectors:  []models.Selector{models.SemanticPattern(t)},
			Elements:   len(found),
			SampleData: d.samples(found),
			Confidence: d.weights.semanticConfidence(len(found), d.library.Weight(t)),
		})
	}
	return fields
}

// directoryFields runs the specialized directory detectors. Their fields
// bypass generic probing and carry fixed high confidences.
func (d *Detector) directoryFields(doc *goquery.Document) []models.DetectedField {
	var fields []models.DetectedField
	for _, dir := range dom.Directories {
		containers := doc.Find(dir.Container)
		if containers.Length() == 0 {
			continue
		}
		for _, f := range dir.Fields {
			var values []string
			containers.Each(func(_ int, c *goquery.Selection) {
				if v := dom.FirstValue(c.Find(f.CSS), f.Type); v != "" {
					values = append(values, v)
				}
			})
			if len(values) == 0 {
				continue
			}
			fields = append(fields, models.DetectedField{
				Name:       f.Name,
				Type:       f.Type,
				Selectors:  []models.Selector{models.Scoped(dir.Container, f.CSS)},
				Elements:   len(values),
				SampleData: d.samples(values),
				Confidence: f.Confidence,
			})
		}
	}
	return fields
}

func (d *Detector) samples(values []string) []string {
	n := len(values)
	if n > d.weights.SampleSize {
		n = d.weights.SampleSize
	}
	out := make([]string, n)
	copy(out, values[:n])
	return out
}
