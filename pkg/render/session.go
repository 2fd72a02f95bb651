package render

import (
	"sort"
	"sync"
)

// PageSession tracks which modules already emitted their CSS and JS during a
// single page render. The zero value is ready to use.
type PageSession struct {
	mu      sync.Mutex
	emitted map[string]struct{}
}

// NewPageSession returns an empty session.
func NewPageSession() *PageSession {
	return &PageSession{}
}

// MarkEmitted records id and reports whether this was the first time.
func (s *PageSession) MarkEmitted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emitted == nil {
		s.emitted = make(map[string]struct{})
	}
	if _, ok := s.emitted[id]; ok {
		return false
	}
	s.emitted[id] = struct{}{}
	return true
}

// Emitted reports whether id was marked.
func (s *PageSession) Emitted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.emitted[id]
	return ok
}

// IDs returns the marked ids in sorted order.
func (s *PageSession) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.emitted))
	for id := range s.emitted {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
