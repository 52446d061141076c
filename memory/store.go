// Package memory remembers high-confidence field sets per domain so that
// later visits to the same site can replay them.
package memory

import (
	"context"

	"github.com/use-agent/sift/models"
)

// FieldSet is the remembered field list of one domain.
type FieldSet []models.DetectedField

// Store is the pattern memory boundary. Implementations serialize writes
// per domain and allow concurrent reads. A read racing a write may observe
// either the old or the new set.
type Store interface {
	// Get returns the remembered set for a domain. ok is false on a miss.
	Get(ctx context.Context, domain string) (FieldSet, bool, error)
	// Put overwrites the remembered set for a domain.
	Put(ctx context.Context, domain string, fields FieldSet) error
}

// clone copies the slice and each field's slices so that callers cannot
// mutate a stored set through a returned value.
func clone(fields FieldSet) FieldSet {
	out := make(FieldSet, len(fields))
	for i, f := range fields {
		f.Selectors = append([]models.Selector(nil), f.Selectors...)
		f.SampleData = append([]string(nil), f.SampleData...)
		out[i] = f
	}
	return out
}
