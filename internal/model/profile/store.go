package profile

import "strings"

// Store resolves relay profiles by the id used in the endpoint path.
type Store interface {
	List() []Profile
	FindByID(id string) (Profile, bool)
}

// MemoryStore is a read-only Store built once at startup. Ids match
// case-insensitively; the first profile registered under an id wins.
type MemoryStore struct {
	ordered []Profile
	byID    map[string]int
}

// NewMemoryStore indexes profiles, dropping those without an id.
func NewMemoryStore(profiles []Profile) *MemoryStore {
	s := &MemoryStore{byID: make(map[string]int, len(profiles))}
	for _, p := range profiles {
		key := normalizeID(p.ID)
		if key == "" {
			continue
		}
		if _, dup := s.byID[key]; dup {
			continue
		}
		s.byID[key] = len(s.ordered)
		s.ordered = append(s.ordered, p)
	}
	return s
}

// List returns the profiles in registration order.
func (s *MemoryStore) List() []Profile {
	return append([]Profile(nil), s.ordered...)
}

// FindByID resolves a path segment to a profile.
func (s *MemoryStore) FindByID(id string) (Profile, bool) {
	idx, ok := s.byID[normalizeID(id)]
	if !ok {
		return Profile{}, false
	}
	return s.ordered[idx], true
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
