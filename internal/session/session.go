// Package session tracks signed-in users by opaque token.
package session

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Manager hands out session tokens and resolves them back to nicks.
//
// The manager starts cold: Restored reports false until Restore has run,
// and the readiness gate holds back the initial inbox load until then.
type Manager struct {
	mu       sync.RWMutex
	byToken  map[string]string
	restored atomic.Bool
}

func NewManager() *Manager {
	return &Manager{
		byToken: map[string]string{},
	}
}

// Restore brings the manager into service. Idempotent.
func (m *Manager) Restore() {
	m.restored.Store(true)
}

// Restored reports whether the manager is in service.
func (m *Manager) Restored() bool {
	return m.restored.Load()
}

// Login creates a session for nick and returns its token.
func (m *Manager) Login(nick string) string {
	token := uuid.NewString()
	m.mu.Lock()
	m.byToken[token] = nick
	m.mu.Unlock()
	return token
}

// Resolve returns the nick behind a token, or false for unknown tokens.
func (m *Manager) Resolve(token string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	nick, ok := m.byToken[token]
	return nick, ok
}

// Logout drops a session. Unknown tokens are a no-op.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.byToken, token)
	m.mu.Unlock()
}
