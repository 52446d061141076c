package detector

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/sift/dom"
)

// ContainerPattern is a catalog selector that matched enough elements to be
// trusted as "one element per record".
type ContainerPattern struct {
	Selector string
	Hint     string
	Weight   float64
	Elements *goquery.Selection
}

// Len returns the number of containers.
func (p ContainerPattern) Len() int { return p.Elements.Length() }

// DiscoverContainers probes the container catalog in order and returns every
// selector whose outermost matches number at least w.MinContainerElements.
// Patterns are not mutually exclusive.
func DiscoverContainers(doc *goquery.Document, w Weights) []ContainerPattern {
	var patterns []ContainerPattern
	for _, c := range dom.ContainerCatalog {
		elements := dom.Outermost(doc.Find(c.CSS), c.CSS)
		if elements.Length() < w.MinContainerElements {
			continue
		}
		patterns = append(patterns, ContainerPattern{
			Selector: c.CSS,
			Hint:     c.Hint,
			Weight:   c.Weight,
			Elements: elements,
		})
	}
	return patterns
}
