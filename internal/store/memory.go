package store

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryStore creates a process-local Store
func NewMemoryStore() Store {
	return &memoryStore{docs: make(map[string]Document)}
}

func (s *memoryStore) Load(ctx context.Context, key string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key]
	if !ok {
		return Document{}, nil
	}
	return Document{Data: append([]byte(nil), doc.Data...), Revision: doc.Revision}, nil
}

func (s *memoryStore) Save(ctx context.Context, key string, data []byte, expected int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[key].Revision != expected {
		return 0, ErrConflict
	}
	next := expected + 1
	s.docs[key] = Document{Data: append([]byte(nil), data...), Revision: next}
	return next, nil
}

func (s *memoryStore) Close() error {
	return nil
}
