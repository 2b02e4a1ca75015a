package history

import (
	"context"
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by a Backend when the key has never been written
// or has been deleted.
var ErrKeyNotFound = errors.New("key not found")

// ErrConflict is returned by Update when the key kept changing under it for
// every retry.
var ErrConflict = errors.New("concurrent update conflict")

// UpdateFunc computes the next value of a key from its current one. current
// is nil when the key does not exist.
type UpdateFunc func(current []byte) ([]byte, error)

// Backend is a durable key/value store. Set must not return before the value
// is persisted. Update is an atomic read-modify-write of one key that holds
// across every process sharing the backend.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Delete(ctx context.Context, key string) error
}

// Backend kinds accepted by OpenBackend.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// BackendOptions carries the settings for every backend kind; only the fields
// of the selected kind are read.
type BackendOptions struct {
	Dir   string
	Redis RedisOptions
}

// OpenBackend creates the backend named by kind.
func OpenBackend(ctx context.Context, kind string, opts BackendOptions) (Backend, error) {
	switch kind {
	case BackendFile, "":
		return NewFileBackend(opts.Dir)
	case BackendRedis:
		return NewRedisBackend(ctx, opts.Redis)
	case BackendMemory:
		return NewMemoryBackend(), nil
	}
	return nil, fmt.Errorf("unknown history backend %q", kind)
}
