package mystore

import (
	"context"
	"sync"
)

type InMemoryStore struct {
	sync.Mutex
	Items map[string]string
}

func NewInMemoryStore(c context.Context) (*InMemoryStore, func(), error) {
	return &InMemoryStore{
		Items: make(map[string]string),
	}, func() {}, nil
}

func (s *InMemoryStore) Put(c context.Context, key string, value string) error {
	s.Lock()
	defer s.Unlock()

	s.Items[key] = value

	return nil
}

func (s *InMemoryStore) Get(c context.Context, key string) (string, bool, error) {
	s.Lock()
	defer s.Unlock()

	result, exists := s.Items[key]

	return result, exists, nil
}

func (s *InMemoryStore) Delete(c context.Context, key string) error {
	s.Lock()
	defer s.Unlock()

	delete(s.Items, key)

	return nil
}
