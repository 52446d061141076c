package memory

import (
	"context"
	"sync"
)

// Local is an in-process Store. Entries never expire; growth is bounded by
// the number of distinct domains analyzed.
type Local struct {
	mu      sync.RWMutex
	entries map[string]FieldSet

	// writers holds one mutex per domain so that concurrent Puts to the
	// same domain are applied one at a time.
	writers sync.Map // domain (string) -> *sync.Mutex
}

// NewLocal returns an empty in-process store.
func NewLocal() *Local {
	return &Local{entries: make(map[string]FieldSet)}
}

// Get returns a copy of the remembered set.
func (l *Local) Get(_ context.Context, domain string) (FieldSet, bool, error) {
	l.mu.RLock()
	fields, ok := l.entries[domain]
	l.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return clone(fields), true, nil
}

// Put overwrites the domain's set.
func (l *Local) Put(_ context.Context, domain string, fields FieldSet) error {
	lock, _ := l.writers.LoadOrStore(domain, &sync.Mutex{})
	w := lock.(*sync.Mutex)
	w.Lock()
	defer w.Unlock()

	stored := clone(fields)
	l.mu.Lock()
	l.entries[domain] = stored
	l.mu.Unlock()
	return nil
}

// Len returns the number of remembered domains.
func (l *Local) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
