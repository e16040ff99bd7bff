package http

import (
	"sync"

	"github.com/google/uuid"
)

// Session is the request's session accessor. Storage backends live outside
// the framework; they only need to satisfy this interface.
type Session interface {
	ID() string
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
}

// ArraySession keeps values in memory for the lifetime of the value.
type ArraySession struct {
	mu     sync.RWMutex
	id     string
	values map[string]any
}

// NewArraySession creates an empty session with a random ID.
func NewArraySession() *ArraySession {
	return &ArraySession{id: uuid.NewString(), values: make(map[string]any)}
}

func (s *ArraySession) ID() string { return s.id }

func (s *ArraySession) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ArraySession) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *ArraySession) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}
