package filestore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps uploads in a process-wide map keyed <ownerId>_<unixMilli>.
// Entries expire after a TTL and the map is capped, evicting the oldest entry
// when full.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

type memoryEntry struct {
	data     []byte
	storedAt time.Time
}

func NewMemoryStore(ttl time.Duration, maxEntries int) *MemoryStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 64
	}
	return &MemoryStore{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, ownerID, name string, data []byte) (string, error) {
	_ = ctx
	_ = name
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	key := fmt.Sprintf("%s_%d", ownerID, now.UnixMilli())
	for i := 1; ; i++ {
		if _, exists := s.entries[key]; !exists {
			break
		}
		key = fmt.Sprintf("%s_%d_%d", ownerID, now.UnixMilli(), i)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	s.entries[key] = memoryEntry{data: stored, storedAt: now}
	return key, nil
}

func (s *MemoryStore) Get(ctx context.Context, locator string) ([]byte, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[locator]
	if !ok || s.now().Sub(e.storedAt) > s.ttl {
		delete(s.entries, locator)
		return nil, fmt.Errorf("stored file %s not found", locator)
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

func (s *MemoryStore) evictLocked(now time.Time) {
	for k, e := range s.entries {
		if now.Sub(e.storedAt) > s.ttl {
			delete(s.entries, k)
		}
	}
	for len(s.entries) >= s.maxEntries {
		oldestKey := ""
		var oldest time.Time
		for k, e := range s.entries {
			if oldestKey == "" || e.storedAt.Before(oldest) {
				oldestKey = k
				oldest = e.storedAt
			}
		}
		delete(s.entries, oldestKey)
	}
}
