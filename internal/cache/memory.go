package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

var _ TranslationCache = (*MemoryTranslationCache)(nil)

type memoryKey struct {
	objectType string
	guid       uuid.UUID
}

// MemoryTranslationCache keeps translations for the life of the process.
type MemoryTranslationCache struct {
	mu  sync.RWMutex
	ids map[memoryKey]int
}

func NewMemoryTranslationCache() *MemoryTranslationCache {
	return &MemoryTranslationCache{ids: make(map[memoryKey]int)}
}

func (m *MemoryTranslationCache) GetLocalID(ctx context.Context, objectType string, guid uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.ids[memoryKey{objectType, guid}]
	if !ok {
		return 0, ErrMiss
	}
	return id, nil
}

func (m *MemoryTranslationCache) SetLocalID(ctx context.Context, objectType string, guid uuid.UUID, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ids[memoryKey{objectType, guid}] = id
	return nil
}

func (m *MemoryTranslationCache) Forget(ctx context.Context, objectType string, guid uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.ids, memoryKey{objectType, guid})
	return nil
}
