package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dashgen-org/dashgen/engine"
)

// ============================================================================
// REGISTRY — In-Memory Dashboard Index
// ============================================================================
// Holds built dashboards keyed by ID. Safe for concurrent use; the zero
// value is not ready, use New.
// ============================================================================

// NotFoundError reports a lookup for an unknown dashboard ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dashboard %q not found", e.ID)
}

// Entry is the listing view of a registered dashboard.
type Entry struct {
	ID      string
	Title   string
	Records int
	Created time.Time
}

type record struct {
	dashboard *engine.Dashboard
	created   time.Time
}

// Registry is a concurrent in-memory dashboard store.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]record
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]record)}
}

// Put registers a dashboard under its ID, replacing any previous entry.
func (r *Registry) Put(d *engine.Dashboard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[d.ID] = record{dashboard: d, created: time.Now()}
}

// Get returns the dashboard for an ID.
func (r *Registry) Get(id string) (*engine.Dashboard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.entries[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return rec.dashboard, nil
}

// Delete removes a dashboard. Deleting an unknown ID is an error.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(r.entries, id)
	return nil
}

// List returns all entries, newest first.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for id, rec := range r.entries {
		out = append(out, Entry{
			ID:      id,
			Title:   rec.dashboard.Config.Title,
			Records: rec.dashboard.Table.NumRows(),
			Created: rec.created,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	return out
}

// Len returns the number of registered dashboards.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
