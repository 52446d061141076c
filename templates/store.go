// Package templates stores saved extraction setups in memory.
package templates

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/use-agent/sift/models"
)

// Store is a concurrency-safe template registry.
type Store struct {
	mu        sync.RWMutex
	templates map[string]models.Template
	now       func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{templates: make(map[string]models.Template), now: time.Now}
}

// Create assigns an ID and creation time and stores the template.
func (s *Store) Create(t models.Template) models.Template {
	t.ID = uuid.NewString()
	t.CreatedAt = s.now().UTC()
	t.Fields = cloneFields(t.Fields)

	s.mu.Lock()
	s.templates[t.ID] = t
	s.mu.Unlock()
	return t
}

// Get returns a template by ID.
func (s *Store) Get(id string) (models.Template, error) {
	s.mu.RLock()
	t, ok := s.templates[id]
	s.mu.RUnlock()
	if !ok {
		return models.Template{}, notFound(id)
	}
	t.Fields = cloneFields(t.Fields)
	return t, nil
}

// List returns every template, oldest first.
func (s *Store) List() []models.Template {
	s.mu.RLock()
	out := make([]models.Template, 0, len(s.templates))
	for _, t := range s.templates {
		t.Fields = cloneFields(t.Fields)
		out = append(out, t)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Update replaces a template, keeping its ID and creation time.
func (s *Store) Update(id string, t models.Template) (models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.templates[id]
	if !ok {
		return models.Template{}, notFound(id)
	}
	t.ID = old.ID
	t.CreatedAt = old.CreatedAt
	t.Fields = cloneFields(t.Fields)
	s.templates[id] = t
	return t, nil
}

// Delete removes a template.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return notFound(id)
	}
	delete(s.templates, id)
	return nil
}

func notFound(id string) error {
	return models.NewScrapeError(models.ErrCodeNotFound, fmt.Sprintf("template %q not found", id), nil)
}

func cloneFields(fields []models.DetectedField) []models.DetectedField {
	out := make([]models.DetectedField, len(fields))
	for i, f := range fields {
		f.Selectors = append([]models.Selector(nil), f.Selectors...)
		f.SampleData = append([]string(nil), f.SampleData...)
		out[i] = f
	}
	return out
}
