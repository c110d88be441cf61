package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/collection"
)

const (
	defaultMaxEntries = 1024
	defaultRetention  = 10 * time.Minute
)

// Memory is a process-local cache bounded by entry count (LRU eviction) and a
// retention window after which entries are dropped regardless of use.
type Memory struct {
	store *collection.Cache
}

// NewMemory builds an in-process cache.
func NewMemory(maxEntries int, retention time.Duration) (*Memory, error) {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if retention <= 0 {
		retention = defaultRetention
	}
	store, err := collection.NewCache(retention,
		collection.WithLimit(maxEntries),
		collection.WithName("marketdash-responses"),
	)
	if err != nil {
		return nil, fmt.Errorf("cache: create memory store: %w", err)
	}
	return &Memory{store: store}, nil
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) (Entry, bool) {
	v, ok := m.store.Get(key)
	if !ok {
		return Entry{}, false
	}
	entry, ok := v.(Entry)
	return entry, ok
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key string, entry Entry) {
	m.store.Set(key, entry)
}
