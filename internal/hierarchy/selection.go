package hierarchy

import "rental-manager/internal/models"

// The selection is a set of property IDs used to filter list views.
// IDs are not validated; an ID with no matching property simply never matches.

// SetSelectedIDs replaces the selection
func (s *Store) SetSelectedIDs(ids []string) {
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	s.mu.Lock()
	s.selected = next
	s.mu.Unlock()
}

// ToggleSelected adds id if absent and removes it if present.
// It reports whether id is selected afterwards.
func (s *Store) ToggleSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return false
	}
	s.selected[id] = struct{}{}
	return true
}

// ClearSelection empties the selection
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selected = make(map[string]struct{})
	s.mu.Unlock()
}

// SelectedIDs returns the selection, sorted
func (s *Store) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.selected)
}

// IsSelected reports whether id is in the selection
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selected[id]
	return ok
}

// FilteredProperties returns the selected properties in list order,
// or every property when the selection is empty
func (s *Store) FilteredProperties() []models.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Property, 0, len(s.properties))
	for i := range s.properties {
		if len(s.selected) > 0 {
			if _, ok := s.selected[s.properties[i].ID]; !ok {
				continue
			}
		}
		out = append(out, s.properties[i].Clone())
	}
	return out
}
