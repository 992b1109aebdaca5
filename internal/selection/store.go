// Package selection tracks which shipment rows the user has marked for
// a bulk action. Selection survives page changes, filter changes and
// list refreshes; only an explicit Clear or a successful destructive
// action empties it.
package selection

import (
	"sort"
	"sync"
)

// Store is a concurrency-safe set of selected shipment ids.
type Store struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewStore creates an empty selection.
func NewStore() *Store {
	return &Store{ids: make(map[string]struct{})}
}

// Toggle flips one id in or out of the selection and reports whether it
// is selected afterwards.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Add selects one id. Adding an already selected id is a no-op.
func (s *Store) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

// Remove deselects one id.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

// SetMany selects or deselects a batch of ids in one step, as when the
// user toggles a page-level select-all checkbox.
func (s *Store) SetMany(ids []string, selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if selected {
			s.ids[id] = struct{}{}
		} else {
			delete(s.ids, id)
		}
	}
}

// Clear empties the selection.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{})
}

// IsSelected reports whether one id is selected.
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Count returns the number of selected ids.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// SelectedIDs returns the selected ids in sorted order so callers see a
// stable batch regardless of insertion order.
func (s *Store) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// AllSelected reports whether every given id is selected. An empty
// input reports false so a select-all checkbox stays unchecked on an
// empty page.
func (s *Store) AllSelected(ids []string) bool {
	if len(ids) == 0 {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range ids {
		if _, ok := s.ids[id]; !ok {
			return false
		}
	}
	return true
}
