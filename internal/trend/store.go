package trend

import (
	"sync"

	"tokenScope/internal/model"
)

// Store holds derived trend pairs keyed by token id. Entries are recomputed
// whenever the history cache writes samples for a token, so consumers read
// pairs instead of re-running the estimator per render.
type Store struct {
	mu     sync.RWMutex
	trends map[string]model.TrendPair
}

func NewStore() *Store {
	return &Store{trends: make(map[string]model.TrendPair)}
}

// Update derives both trend dimensions from the latest samples and replaces
// the stored pair for the token.
func (s *Store) Update(key string, samples []model.HistorySample) {
	pair := EstimatePair(samples)
	s.mu.Lock()
	s.trends[key] = pair
	s.mu.Unlock()
}

// Get returns the stored pair for a token.
func (s *Store) Get(key string) (model.TrendPair, bool) {
	s.mu.RLock()
	pair, ok := s.trends[key]
	s.mu.RUnlock()
	return pair, ok
}

// Pair returns the stored pair, or the stagnant default for tokens without
// usable history.
func (s *Store) Pair(key string) model.TrendPair {
	if pair, ok := s.Get(key); ok {
		return pair
	}
	return model.DefaultTrendPair()
}

// Len reports how many tokens have derived trends.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trends)
}
