// Package extractor turns a document and a set of field rules into records.
// A single classification step picks one structural regime per call; each
// regime then has its own record-building strategy.
package extractor

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/sift/dom"
)

// Regime names the structural assumption used to build records.
type Regime string

// Regimes in priority order.
const (
	RegimeDirectory  Regime = "directory"
	RegimeContainer  Regime = "container"
	RegimeTable      Regime = "table"
	RegimeList       Regime = "list"
	RegimeIndividual Regime = "individual"
)

// Classification thresholds.
const (
	minContainers = 3
	minTableRows  = 4
	minListItems  = 6
)

// Decision is the classifier output: the regime and, for directory and
// container regimes, the selector of the record containers.
type Decision struct {
	Regime    Regime
	Container string
	Directory *dom.Directory
}

// Classify decides the extraction regime for doc. The checks run in
// priority order and the first that holds wins:
//
//  1. a specialized directory container matches at least once
//  2. a generic record container matches at least three times
//  3. the page has a table and more than three rows
//  4. the page has more than five list items
//  5. otherwise, individual page-level selectors
func Classify(doc *goquery.Document) Decision {
	for i := range dom.Directories {
		dir := &dom.Directories[i]
		if doc.Find(dir.Container).Length() > 0 {
			return Decision{Regime: RegimeDirectory, Container: dir.Container, Directory: dir}
		}
	}

	for _, css := range dom.ExtractionContainers {
		if dom.Outermost(doc.Find(css), css).Length() >= minContainers {
			return Decision{Regime: RegimeContainer, Container: css}
		}
	}

	if doc.Find("table").Length() > 0 && doc.Find("tr").Length() >= minTableRows {
		return Decision{Regime: RegimeTable}
	}

	if doc.Find("li").Length() >= minListItems {
		return Decision{Regime: RegimeList}
	}

	return Decision{Regime: RegimeIndividual}
}
