package chat

import (
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Registry holds every connected Session in connection order.
//
// All identity assignments go through Claim so that the uniqueness check and
// the write happen under the same lock.
type Registry struct {
	mu       sync.RWMutex
	sessions []*Session
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// Add appends s. Adding a session twice is a no-op.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lo.Contains(r.sessions, s) {
		return
	}
	r.sessions = append(r.sessions, s)
	ConnectedClients.Set(float64(len(r.sessions)))
}

// Remove drops s and reports whether it was present.
func (r *Registry) Remove(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := lo.IndexOf(r.sessions, s)
	if idx < 0 {
		return false
	}
	r.sessions = append(r.sessions[:idx:idx], r.sessions[idx+1:]...)
	ConnectedClients.Set(float64(len(r.sessions)))
	return true
}

// List returns a snapshot of all sessions.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]*Session(nil), r.sessions...)
}

// Others returns every session other than s that already has an identity.
func (r *Registry) Others(s *Session) []*Session {
	return lo.Filter(r.List(), func(peer *Session, _ int) bool {
		return peer != s && peer.Identity() != ""
	})
}

func (r *Registry) FindByIdentity(name string) (*Session, bool) {
	if name == "" {
		return nil, false
	}
	return lo.Find(r.List(), func(peer *Session) bool {
		return strings.EqualFold(peer.Identity(), name)
	})
}

// Claim assigns name to s unless another registered session already holds
// it, compared case-insensitively.
func (r *Registry) Claim(s *Session, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, taken := lo.Find(r.sessions, func(peer *Session) bool {
		return peer != s && strings.EqualFold(peer.Identity(), name)
	})
	if taken {
		r.logger.Debug("identity already claimed", zap.String("identity", name))
		return ErrUsernameTaken
	}
	s.identity.Store(name)
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
