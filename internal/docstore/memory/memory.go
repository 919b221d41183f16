// Package memory is the in-process document store used for development and
// tests.
package memory

import (
	"context"
	"sync"
)

type Store struct {
	mu     sync.Mutex
	data   []byte
	ok     bool
	writes int
}

func New() *Store {
	return &Store{}
}

// Seed preloads a document, as if a previous session had written it.
func Seed(data []byte) *Store {
	return &Store{data: append([]byte(nil), data...), ok: true}
}

func (s *Store) Get(_ context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ok {
		return nil, false, nil
	}
	return append([]byte(nil), s.data...), true, nil
}

func (s *Store) Put(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.ok = true
	s.writes++
	return nil
}

// Writes reports how many times Put has been called. Test helper.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
