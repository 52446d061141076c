package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/sift/models"
)

// ContainerSelector is a catalog entry for repeating record containers.
// Weight (0-1) reflects how strongly the selector implies "one record per
// element" and feeds the confidence of fields found inside it.
type ContainerSelector struct {
	CSS    string
	Hint   string
	Weight float64
}

// ContainerCatalog is probed in order by container discovery.
var ContainerCatalog = []ContainerSelector{
	{CSS: `[class*="country"]`, Hint: "country", Weight: 1.0},
	{CSS: `[class*="product"]`, Hint: "product", Weight: 0.95},
	{CSS: `[class*="item"]`, Hint: "item", Weight: 0.8},
	{CSS: `[class*="card"]`, Hint: "card", Weight: 0.85},
	{CSS: `[class*="entry"]`, Hint: "entry", Weight: 0.75},
	{CSS: `[class*="row"]`, Hint: "row", Weight: 0.6},
	{CSS: `[class*="listing"]`, Hint: "listing", Weight: 0.85},
	{CSS: "li", Hint: "", Weight: 0.5},
	{CSS: "tr", Hint: "", Weight: 0.55},
	{CSS: `[class*="col-"]`, Hint: "", Weight: 0.5},
	{CSS: "article", Hint: "article", Weight: 0.8},
}

// ExtractionContainers is the dispatcher's ordered list of generic record
// containers. Bare li/tr are left to the list and table regimes.
var ExtractionContainers = []string{
	`[class*="product"]`,
	`[class*="item"]`,
	`[class*="card"]`,
	`[class*="listing"]`,
	`[class*="entry"]`,
	`[class*="result"]`,
	"article",
}

// DirectoryField is one fixed sub-selector of a specialized directory.
type DirectoryField struct {
	Name       string
	Type       string
	CSS        string
	Confidence int
}

// Directory is a well-known structural idiom whose field semantics are known
// in advance.
type Directory struct {
	Name      string
	Container string
	Fields    []DirectoryField
}

// Directories lists the specialized directory idioms, checked in order.
var Directories = []Directory{
	{
		Name:      "country-directory",
		Container: ".country",
		Fields: []DirectoryField{
			{Name: "Country Name", Type: models.TypeCountry, CSS: "h3", Confidence: 98},
			{Name: "Capital", Type: models.TypeCapital, CSS: ".country-capital", Confidence: 95},
			{Name: "Population", Type: models.TypePopulation, CSS: ".country-population", Confidence: 92},
			{Name: "Area", Type: models.TypeArea, CSS: ".country-area", Confidence: 90},
		},
	},
}

// SplitScope recovers the container scope of a structural selector that was
// flattened to "<container> <element>" on the wire. Only catalog containers
// are recognised; anything else is returned unscoped.
func SplitScope(sel models.Selector) models.Selector {
	if sel.IsSemantic() || sel.Scope != "" {
		return sel
	}
	for _, scope := range knownScopes() {
		if rest, ok := strings.CutPrefix(sel.CSS, scope+" "); ok && strings.TrimSpace(rest) != "" {
			return models.Scoped(scope, rest)
		}
	}
	return sel
}

func knownScopes() []string {
	scopes := make([]string, 0, len(ContainerCatalog)+len(ExtractionContainers)+len(Directories))
	for _, c := range ContainerCatalog {
		scopes = append(scopes, c.CSS)
	}
	scopes = append(scopes, ExtractionContainers...)
	for _, d := range Directories {
		scopes = append(scopes, d.Container)
	}
	return scopes
}

// Outermost drops matches nested inside another match of the same selector,
// e.g. a .country-capital span inside a .country card for [class*="country"].
func Outermost(s *goquery.Selection, css string) *goquery.Selection {
	return s.FilterFunction(func(_ int, el *goquery.Selection) bool {
		return el.ParentsFiltered(css).Length() == 0
	})
}
