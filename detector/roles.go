package detector

import (
	"strings"

	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/semantic"
)

// role is an element-role probe run inside each container. Selectors are
// tried in order; the first one present in the probe container wins.
type role struct {
	Type      string
	Name      string
	Selectors []string
	Priority  float64
}

var roleCatalog = []role{
	{Type: models.TypeTitle, Name: "Title", Selectors: []string{"h1", "h2", "h3"}, Priority: 1.0},
	{Type: models.TypeHeading, Name: "Heading", Selectors: []string{"h4", "h5", "h6"}, Priority: 0.6},
	{Type: models.TypePrice, Name: "Price", Selectors: []string{`[class*="price"]`, `[class*="cost"]`, `[class*="amount"]`}, Priority: 0.95},
	{Type: models.TypeDescription, Name: "Description", Selectors: []string{`[class*="desc"]`, `[class*="summary"]`, "p"}, Priority: 0.5},
	{Type: models.TypeLink, Name: "Link", Selectors: []string{"a[href]"}, Priority: 0.7},
	{Type: models.TypeImage, Name: "Image", Selectors: []string{"img[src]"}, Priority: 0.8},
	{Type: models.TypeDate, Name: "Date", Selectors: []string{`[class*="date"]`, "time"}, Priority: 0.75},
	{Type: models.TypeLocation, Name: "Location", Selectors: []string{`[class*="location"]`, `[class*="address"]`, `[class*="city"]`}, Priority: 0.7},
}

// defaultNames maps refined types to display names.
var defaultNames = map[string]string{
	models.TypeEmail: "Email Address",
	models.TypePhone: "Phone Number",
	models.TypePrice: "Price",
	models.TypeDate:  "Date",
}

// nameFor infers a display name for a container field. Title fields inside
// a keyword container take the keyword: "Country Name", "Product Name".
func nameFor(r role, hint string) string {
	if r.Type == models.TypeTitle {
		switch hint {
		case "country", "product":
			return capitalize(hint) + " Name"
		}
	}
	return r.Name
}

// refineType reclassifies free-text fields whose samples all look like one
// semantic shape. It returns the original type and name when nothing fits.
func refineType(fieldType, name string, samples []string, lib *semantic.Library) (string, string) {
	if fieldType != models.TypeDescription && fieldType != models.TypeHeading {
		return fieldType, name
	}
	if len(samples) == 0 {
		return fieldType, name
	}
	for _, t := range lib.Types() {
		if allMatch(samples, t, lib) {
			if n, ok := defaultNames[t]; ok {
				return t, n
			}
			return t, capitalize(t)
		}
	}
	return fieldType, name
}

// allMatch reports whether every sample is dominated by a match of the type.
func allMatch(samples []string, patternType string, lib *semantic.Library) bool {
	for _, s := range samples {
		matches := lib.MatchType(s, patternType)
		if len(matches) == 0 || 2*len(matches[0]) < len(s) {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
