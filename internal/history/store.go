package history

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/encoding"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

// DefaultKey holds the history of the unscoped local profile.
const DefaultKey = "studentRiskData"

// KeyFor returns the storage key of a profile's history.
func KeyFor(profile string) string {
	if profile == "" {
		return DefaultKey
	}
	return DefaultKey + ":" + profile
}

// Store is an append-only, ordered log of assessments kept under a single
// backend key. Writes reach the backend before the call returns and readers
// never observe a half-applied write.
type Store struct {
	backend Backend
	codec   *encoding.Codec
	key     string
	mu      *sync.RWMutex
}

// NewStore opens the history kept under key.
func NewStore(backend Backend, key string) *Store {
	return &Store{
		backend: backend,
		codec:   encoding.Default(),
		key:     key,
		mu:      &sync.RWMutex{},
	}
}

func (s *Store) Key() string { return s.key }

// Append adds an assessment at the end of the log. The read-modify-write runs
// inside Backend.Update so appends from other processes are never lost.
func (s *Store) Append(ctx context.Context, a risk.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.backend.Update(ctx, s.key, func(current []byte) ([]byte, error) {
		items, err := s.decode(current)
		if err != nil {
			return nil, err
		}
		data, err := s.codec.Marshal(append(items, a))
		if err != nil {
			return nil, &StorageError{Op: "encode", Key: s.key, Err: err}
		}
		return data, nil
	})
	var storageErr *StorageError
	if err != nil && !errors.As(err, &storageErr) {
		return &StorageError{Op: "write", Key: s.key, Err: err}
	}
	return err
}

// All returns every assessment in insertion order. The slice is a copy.
func (s *Store) All(ctx context.Context) ([]risk.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []risk.Assessment{}
	}
	return items, nil
}

// Latest returns the most recently appended assessment. ok is false when the
// history is empty.
func (s *Store) Latest(ctx context.Context) (a risk.Assessment, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := s.load(ctx)
	if err != nil || len(items) == 0 {
		return risk.Assessment{}, false, err
	}
	return items[len(items)-1], true, nil
}

// Clear irreversibly removes every assessment.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.key); err != nil {
		return &StorageError{Op: "clear", Key: s.key, Err: err}
	}
	slog.Info("Assessment history cleared", "key", s.key)
	return nil
}

func (s *Store) load(ctx context.Context) ([]risk.Assessment, error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Key: s.key, Err: err}
	}
	return s.decode(data)
}

func (s *Store) decode(data []byte) ([]risk.Assessment, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var items []risk.Assessment
	if err := s.codec.Unmarshal(data, &items); err != nil {
		slog.Warn("Corrupt assessment history payload", "key", s.key, "error", err)
		return nil, &StorageError{Op: "decode", Key: s.key, Err: err}
	}
	return items, nil
}

// Registry hands out one Store per profile over a shared backend so that
// concurrent requests for the same profile serialize on the same lock.
type Registry struct {
	backend Backend

	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(backend Backend) *Registry {
	return &Registry{
		backend: backend,
		stores:  make(map[string]*Store),
	}
}

// ForProfile returns the history of a profile.
func (r *Registry) ForProfile(profile string) *Store {
	key := KeyFor(profile)

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[key]; ok {
		return s
	}
	s := NewStore(r.backend, key)
	r.stores[key] = s
	return s
}
