// Package cache memoizes product rankings per index build, backed by process
// memory or Redis.
package cache

import (
	"context"
	"sync"
	"time"
)

// Backend stores opaque values with a TTL.
type Backend interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Flush removes every key owned by this backend and returns how many.
	Flush(ctx context.Context) (int64, error)
	Close() error
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// MemoryBackend is an in-process Backend.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryBackend creates an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get implements Backend. Expired entries are dropped lazily.
func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	entry, ok := b.entries[key]
	b.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !b.now().Before(entry.expiresAt) {
		b.mu.Lock()
		if current, still := b.entries[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(b.entries, key)
		}
		b.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set implements Backend. ttl <= 0 keeps the entry until Flush.
func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = b.now().Add(ttl)
	}
	b.mu.Lock()
	b.entries[key] = entry
	b.mu.Unlock()
	return nil
}

// Flush implements Backend.
func (b *MemoryBackend) Flush(_ context.Context) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := int64(len(b.entries))
	b.entries = make(map[string]memoryEntry)
	return n, nil
}

// Len returns the number of stored entries, expired or not.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Close implements Backend.
func (b *MemoryBackend) Close() error { return nil }
