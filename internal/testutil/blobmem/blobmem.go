package blobmem

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var ErrNotFound = errors.New("blobmem: object not found")

// Store keeps objects in memory. PutErr, when set, fails every Put.
type Store struct {
	PutErr error

	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func New() *Store {
	return &Store{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *Store) Put(_ context.Context, key string, content []byte, contentType string) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = slices.Clone(content)
	s.types[key] = contentType
	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(b), nil
}

func (s *Store) ContentType(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.types[key]
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
