package detector

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/use-agent/sift/dom"
	"github.com/use-agent/sift/memory"
	"github.com/use-agent/sift/models"
	"github.com/use-agent/sift/semantic"
)

// fieldNamespace seeds deterministic field IDs.
var fieldNamespace = uuid.MustParse("6f1c7a52-3b0e-4d8e-9a43-2f5d8c1e7b90")

// Detector runs field detection over parsed documents. It is safe for
// concurrent use; the only shared mutable state is the memory store.
type Detector struct {
	weights Weights
	library *semantic.Library
	store   memory.Store
}

// New creates a Detector. A nil library uses the default patterns; a nil
// store disables pattern memory regardless of per-call options.
func New(weights Weights, library *semantic.Library, store memory.Store) *Detector {
	if library == nil {
		library = semantic.Default()
	}
	return &Detector{weights: weights, library: library, store: store}
}

// Weights returns the tuning the detector was built with.
func (d *Detector) Weights() Weights { return d.weights }

// Detect proposes ranked fields for doc. domain keys pattern memory. The
// result is never nil.
func (d *Detector) Detect(ctx context.Context, doc *goquery.Document, domain string, opts models.AnalyzeOptions) []models.DetectedField {
	useMemory := opts.UsePatternMemory && d.store != nil && domain != ""
	bodyText := dom.BodyText(doc)

	var candidates []models.DetectedField
	var base map[string]int
	if useMemory {
		var replayed []models.DetectedField
		replayed, base = d.replay(ctx, doc, bodyText, domain)
		candidates = append(candidates, replayed...)
	}
	candidates = append(candidates, d.Candidates(doc, bodyText, opts.UseSemanticAnalysis)...)

	fields := Optimize(candidates, opts.ConfidenceThreshold, d.weights.ResultCap)
	for i := range fields {
		fields[i].ID = fieldID(fields[i])
		fields[i].Selected = fields[i].Confidence >= d.weights.SelectThreshold
	}

	if useMemory {
		d.remember(ctx, domain, fields, base)
	}

	slog.Debug("detect: fields ranked",
		"domain", domain,
		"candidates", len(candidates),
		"fields", len(fields),
	)
	return fields
}

// Candidates generates unranked candidates from every heuristic: specialized
// directories, repeating containers, page-wide signals and, when enabled,
// semantic text patterns.
func (d *Detector) Candidates(doc *goquery.Document, bodyText string, useSemantic bool) []models.DetectedField {
	directory := d.directoryFields(doc)
	var others []models.DetectedField
	others = append(others, d.containerFields(DiscoverContainers(doc, d.weights))...)
	others = append(others, d.pageSignalFields(doc)...)
	if useSemantic {
		others = append(others, d.semanticFields(bodyText)...)
	}
	return append(directory, disambiguate(directory, others)...)
}

// disambiguate renames heuristic fields whose name is already taken by a
// directory field of another type, so records never hold two fields under
// one key. "Country Name" from a title probe becomes "Country Name (Title)".
func disambiguate(directory, others []models.DetectedField) []models.DetectedField {
	taken := make(map[string]string, len(directory))
	for _, f := range directory {
		taken[f.Name] = f.Type
	}
	for i, f := range others {
		if t, ok := taken[f.Name]; ok && t != f.Type {
			others[i].Name = f.Name + " (" + capitalize(f.Type) + ")"
		}
	}
	return others
}

// replay re-emits remembered fields that still match the document, boosted.
// base maps each replayed field key to its stored, unboosted confidence.
func (d *Detector) replay(ctx context.Context, doc *goquery.Document, bodyText, domain string) (out []models.DetectedField, base map[string]int) {
	remembered, ok, err := d.store.Get(ctx, domain)
	if err != nil {
		slog.Warn("detect: pattern memory read failed", "domain", domain, "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}

	base = make(map[string]int, len(remembered))
	for _, f := range remembered {
		values := d.evaluate(doc, bodyText, f)
		if len(values) == 0 {
			continue
		}
		f.Elements = len(values)
		f.SampleData = d.samples(values)
		base[f.Key()] = f.Confidence
		f.Confidence = d.weights.boost(f.Confidence)
		out = append(out, f)
	}

	slog.Debug("detect: pattern memory replayed",
		"domain", domain,
		"remembered", len(remembered),
		"replayed", len(out),
	)
	return out, base
}

// evaluate returns the page-level values of the first selector that matches.
func (d *Detector) evaluate(doc *goquery.Document, bodyText string, f models.DetectedField) []string {
	for _, sel := range f.Selectors {
		var values []string
		if sel.IsSemantic() {
			values = d.library.MatchType(bodyText, sel.Pattern)
		} else if sel.Full() != "" {
			values = dom.Values(doc.Find(sel.Full()), f.Type)
		}
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

// remember overwrites the domain entry with the high-confidence fields.
// A field that won through replay is stored at its unboosted confidence,
// so the bonus never compounds across visits.
func (d *Detector) remember(ctx context.Context, domain string, fields []models.DetectedField, base map[string]int) {
	var high memory.FieldSet
	for _, f := range fields {
		if b, ok := base[f.Key()]; ok && f.Confidence == d.weights.boost(b) {
			f.Confidence = b
		}
		if f.Confidence > d.weights.HighConfidenceCut {
			high = append(high, f)
		}
	}
	if len(high) == 0 {
		return
	}
	if err := d.store.Put(ctx, domain, high); err != nil {
		slog.Warn("detect: pattern memory write failed", "domain", domain, "error", err)
	}
}

// fieldID derives a stable ID from the field's key and selectors so the
// same field on the same page always gets the same ID.
func fieldID(f models.DetectedField) string {
	parts := make([]string, 0, len(f.Selectors)+1)
	parts = append(parts, f.Key())
	for _, s := range f.Selectors {
		parts = append(parts, s.String())
	}
	return uuid.NewSHA1(fieldNamespace, []byte(strings.Join(parts, "\x00"))).String()
}
