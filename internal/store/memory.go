package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and the no-Redis demo
// mode. Expiry is honored lazily on read.
type MemoryStore struct {
	mu     sync.RWMutex
	hashes map[string]map[string]string
	values map[string]memoryValue
	now    func() time.Time
}

type memoryValue struct {
	value   string
	expires time.Time // zero means no expiry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hashes: make(map[string]map[string]string),
		values: make(map[string]memoryValue),
		now:    time.Now,
	}
}

func (s *MemoryStore) GetFields(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.hashes[key]
	if !ok {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) GetValue(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	entry, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !entry.expires.IsZero() && s.now().After(entry.expires) {
		s.mu.Lock()
		delete(s.values, key)
		s.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) SetValue(_ context.Context, key, value string, ttl time.Duration) error {
	entry := memoryValue{value: value}
	if ttl > 0 {
		entry.expires = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.values[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SetFields(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.hashes[key]
	if !ok {
		existing = make(map[string]string, len(fields))
		s.hashes[key] = existing
	}
	for k, v := range fields {
		existing[k] = v
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// Pipeline satisfies Batcher; writes apply immediately since there is no
// round trip to save.
func (s *MemoryStore) Pipeline(ctx context.Context, fn func(p Pipeliner) error) error {
	return fn(memoryPipeliner{ctx: ctx, store: s})
}

type memoryPipeliner struct {
	ctx   context.Context
	store *MemoryStore
}

func (p memoryPipeliner) SetFields(key string, fields map[string]string) {
	_ = p.store.SetFields(p.ctx, key, fields)
}

func (p memoryPipeliner) SetValue(key, value string, ttl time.Duration) {
	_ = p.store.SetValue(p.ctx, key, value, ttl)
}

// Len reports how many keys are stored, for seeding tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hashes) + len(s.values)
}
