package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MetadataType partitions the upstream response cache.
type MetadataType string

const (
	MetadataSearch   MetadataType = "search"
	MetadataMetadata MetadataType = "metadata"
	MetadataItem     MetadataType = "item"
)

// MetadataTypes lists every partition, used by Clear with an empty type.
var MetadataTypes = []MetadataType{MetadataSearch, MetadataMetadata, MetadataItem}

// ParseMetadataType validates a cache type name. "" and "all" select every type.
func ParseMetadataType(s string) (MetadataType, error) {
	switch s {
	case "", "all":
		return "", nil
	case string(MetadataSearch), string(MetadataMetadata), string(MetadataItem):
		return MetadataType(s), nil
	}
	return "", fmt.Errorf("unknown cache type %q", s)
}

// MetadataStore caches raw upstream responses by type. Implemented by an
// in-memory store (single node), redis and MySQL.
type MetadataStore interface {
	Get(ctx context.Context, cacheType MetadataType, key string) ([]byte, bool, error)
	Set(ctx context.Context, cacheType MetadataType, key string, value []byte, ttl time.Duration) error
	// Clear removes every entry of cacheType, or of all types when cacheType
	// is empty, and reports how many were removed.
	Clear(ctx context.Context, cacheType MetadataType) (int, error)
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryMetadataStore is a process-local MetadataStore, selected with
// METADATA_CACHE_BACKEND=memory.
type MemoryMetadataStore struct {
	mu    sync.Mutex
	items map[MetadataType]map[string]memoryItem
	clock Clock
}

// NewMemoryMetadataStore creates an empty store. A nil clock means SystemClock.
func NewMemoryMetadataStore(clock Clock) *MemoryMetadataStore {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MemoryMetadataStore{
		items: make(map[MetadataType]map[string]memoryItem),
		clock: clock,
	}
}

func (s *MemoryMetadataStore) Get(_ context.Context, cacheType MetadataType, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[cacheType][key]
	if !ok {
		return nil, false, nil
	}
	if !s.clock.Now().Before(it.expiresAt) {
		delete(s.items[cacheType], key)
		return nil, false, nil
	}
	return it.value, true, nil
}

func (s *MemoryMetadataStore) Set(_ context.Context, cacheType MetadataType, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.items[cacheType]
	if !ok {
		bucket = make(map[string]memoryItem)
		s.items[cacheType] = bucket
	}
	bucket[key] = memoryItem{value: value, expiresAt: s.clock.Now().Add(ttl)}
	return nil
}

func (s *MemoryMetadataStore) Clear(_ context.Context, cacheType MetadataType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cacheType != "" {
		n := len(s.items[cacheType])
		delete(s.items, cacheType)
		return n, nil
	}
	n := 0
	for _, bucket := range s.items {
		n += len(bucket)
	}
	s.items = make(map[MetadataType]map[string]memoryItem)
	return n, nil
}
