package session

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// RegistryConfig bounds the registry.
type RegistryConfig struct {
	MaxSessions int
}

// Registry tracks live sessions and hands each new one the shared
// dependencies.
type Registry struct {
	cfg    RegistryConfig
	deps   Deps
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	nextID   uint64
}

func NewRegistry(cfg RegistryConfig, deps Deps) *Registry {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 256
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		cfg:      cfg,
		deps:     deps,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Open admits a new session or reports that the registry is full.
func (r *Registry) Open() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) >= r.cfg.MaxSessions {
		return nil, fmt.Errorf("session limit reached (%d)", r.cfg.MaxSessions)
	}
	r.nextID++
	id := fmt.Sprintf("s%06d", r.nextID)
	sess := NewSession(id, r.deps)
	r.sessions[id] = sess
	r.logger.Info("session opened", zap.String("session", id), zap.Int("active", len(r.sessions)))
	return sess, nil
}

// Release drops a closed session from the registry.
func (r *Registry) Release(sess *Session) {
	if sess == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sess.ID())
	r.logger.Info("session closed", zap.String("session", sess.ID()), zap.Int("active", len(r.sessions)))
}

// Count reports the number of active sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
