// Package session is the explicit PIN gate: a successful unlock derives the
// document key and issues a token the client presents on every later
// request, so the PIN is entered once per session.
package session

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"moneylog/internal/vault"
)

var ErrWrongPIN = errors.New("session: wrong pin")

// Session carries the derived key for the lifetime of one unlocked client.
type Session struct {
	Token     string
	Key       vault.Key
	CreatedAt time.Time
}

type Manager struct {
	pin  string
	salt string
	ttl  time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// NewManager configures the gate. ttl bounds how long an issued token stays
// valid without re-entering the PIN.
func NewManager(pin, salt string, ttl time.Duration) *Manager {
	m := &Manager{
		pin:         pin,
		salt:        salt,
		ttl:         ttl,
		sessions:    make(map[string]*Session),
		stopCleanup: make(chan struct{}),
	}
	go m.startCleanup()
	return m
}

// Unlock compares the PIN and, on success, derives the key and issues a
// fresh session token.
func (m *Manager) Unlock(pin string) (*Session, error) {
	if subtle.ConstantTimeCompare([]byte(pin), []byte(m.pin)) != 1 {
		return nil, ErrWrongPIN
	}
	s := &Session{
		Token:     uuid.NewString(),
		Key:       vault.DeriveKey(pin, m.salt),
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s, nil
}

// Get resolves a token to its live session, expiring stale ones on the way.
func (m *Manager) Get(token string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, false
	}
	if time.Since(s.CreatedAt) > m.ttl {
		delete(m.sessions, token)
		return nil, false
	}
	return s, true
}

// End removes a session; the next request with its token is rejected.
func (m *Manager) End(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

func (m *Manager) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupExpired()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) cleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-m.ttl)
	for token, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sessions, token)
		}
	}
}

// Stop ends the background cleanup goroutine.
func (m *Manager) Stop() {
	m.shutdownOnce.Do(func() {
		close(m.stopCleanup)
	})
}
