package crawl

import "sync"

// SeenSet records URLs that were already selected. It is safe for
// concurrent use.
type SeenSet struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewSeenSet creates an empty SeenSet.
func NewSeenSet() *SeenSet {
	return &SeenSet{seen: make(map[string]bool)}
}

// Add records url and reports whether it was new.
func (s *SeenSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[url] {
		return false
	}
	s.seen[url] = true
	return true
}

// Len returns the number of unique URLs seen.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
