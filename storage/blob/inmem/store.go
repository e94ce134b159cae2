package inmemblob

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lccc/gatelog/core"
)

type Store struct {
	mu      sync.RWMutex
	objects map[string]string
}

var _ core.BlobStore = (*Store)(nil) // interface compliance check

func New() *Store {
	return &Store{objects: make(map[string]string)}
}

func (s *Store) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[name]
	return ok, nil
}

func (s *Store) Read(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.objects[name]
	if !ok {
		return "", core.ErrBlobNotFound
	}
	return content, nil
}

func (s *Store) Write(_ context.Context, name, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = content
	return nil
}

func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[name]; !ok {
		return core.ErrBlobNotFound
	}
	delete(s.objects, name)
	return nil
}

func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0)
	for name := range s.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
