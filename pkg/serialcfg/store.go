package serialcfg

import "sync"

// Store holds the live line configuration. Every commit bumps the
// version so readers can tell which configuration a decode step used.
type Store struct {
	mu      sync.RWMutex
	cfg     Config
	version uint64
}

func NewStore(initial Config) *Store {
	return &Store{cfg: initial}
}

// Current returns the live configuration and its version.
func (s *Store) Current() (Config, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.version
}

// Commit replaces the configuration wholesale and returns the new version.
func (s *Store) Commit(cfg Config) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.version++
	return s.version
}
