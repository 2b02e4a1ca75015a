package cache

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// item represents a cached value with expiration
type item[V any] struct {
	value     V
	expiresAt time.Time
}

func (i item[V]) expired(now time.Time) bool {
	return now.After(i.expiresAt)
}

// Cache provides thread-safe caching with TTL
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]item[V]
	ttl   time.Duration
	now   func() time.Time

	// OnEvict is called without the lock held for entries dropped by expiry
	OnEvict func(key K, value V)
}

// New creates a new cache with the specified TTL
func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]item[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Run removes expired items every interval until ctx is done
func (c *Cache[K, V]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Sweep drops every expired item and returns how many were removed
func (c *Cache[K, V]) Sweep() int {
	now := c.now()

	c.mu.Lock()
	evicted := make(map[K]V)
	for key, it := range c.items {
		if it.expired(now) {
			evicted[key] = it.value
			delete(c.items, key)
		}
	}
	c.mu.Unlock()

	if c.OnEvict != nil {
		for key, value := range evicted {
			c.OnEvict(key, value)
		}
	}
	return len(evicted)
}

// Get retrieves an item from the cache. A hit refreshes its expiry.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	it, exists := c.items[key]
	if !exists || it.expired(now) {
		if exists {
			delete(c.items, key)
		}
		var zero V
		return zero, false
	}

	it.expiresAt = now.Add(c.ttl)
	c.items[key] = it
	return it.value, true
}

// Set stores an item in the cache
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Delete removes an item from the cache
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]item[V])
}

// Size returns the number of items in the cache
func (c *Cache[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache[K, V]) Stats() map[string]interface{} {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	totalItems := len(c.items)
	expiredItems := 0
	for _, it := range c.items {
		if it.expired(now) {
			expiredItems++
		}
	}

	return map[string]interface{}{
		"total_items":   totalItems,
		"expired_items": expiredItems,
		"active_items":  totalItems - expiredItems,
		"ttl_seconds":   c.ttl.Seconds(),
	}
}

// Metrics receives hit and miss counts from the response cache
type Metrics interface {
	IncrementCacheHit()
	IncrementCacheMiss()
}

type cachedResponse struct {
	contentType string
	body        []byte
}

// ResponseCache caches successful GET responses of immutable routes
type ResponseCache struct {
	store *Cache[string, cachedResponse]
}

// NewResponseCache creates a response cache with the given TTL
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{store: New[string, cachedResponse](ttl)}
}

// Stats returns the underlying cache statistics
func (rc *ResponseCache) Stats() map[string]interface{} {
	return rc.store.Stats()
}

// Middleware serves cached bodies keyed by the request URI
func (rc *ResponseCache) Middleware(metrics Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet {
			ctx.Next()
			return
		}

		key := ctx.Request.URL.RequestURI()
		if cached, found := rc.store.Get(key); found {
			metrics.IncrementCacheHit()
			ctx.Header("X-Cache", "HIT")
			ctx.Data(http.StatusOK, cached.contentType, cached.body)
			ctx.Abort()
			return
		}

		metrics.IncrementCacheMiss()
		ctx.Header("X-Cache", "MISS")

		wrapper := &responseWriter{ResponseWriter: ctx.Writer, body: &bytes.Buffer{}}
		ctx.Writer = wrapper
		ctx.Next()

		if wrapper.Status() == http.StatusOK {
			rc.store.Set(key, cachedResponse{
				contentType: wrapper.Header().Get("Content-Type"),
				body:        wrapper.body.Bytes(),
			})
		}
	}
}

// responseWriter wraps gin.ResponseWriter to capture response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
