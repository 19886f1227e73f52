package crm

import "github.com/starford/crmai/internal/summary"

// Context returns the text digest of the current state fed to AI prompts.
func (s *Store) Context() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return summary.Build(s.state)
}
