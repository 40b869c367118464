package repository

import (
	"context"
	"sync"
	"time"

	"freightbook/internal/models"
)

// MemorySnapshotCache is the in-process fallback cache. A ttl of zero
// means entries never expire.
type MemorySnapshotCache struct {
	mu        sync.RWMutex
	snapshot  *models.DirectorySnapshot
	storedAt  time.Time
	ttl       time.Duration
	clockFunc func() time.Time
}

func NewMemorySnapshotCache(ttl time.Duration) *MemorySnapshotCache {
	return &MemorySnapshotCache{
		ttl:       ttl,
		clockFunc: time.Now,
	}
}

func (m *MemorySnapshotCache) GetSnapshot(ctx context.Context) (*models.DirectorySnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snapshot == nil {
		return nil, nil
	}
	if m.ttl > 0 && m.clockFunc().Sub(m.storedAt) > m.ttl {
		return nil, nil
	}
	return m.snapshot, nil
}

func (m *MemorySnapshotCache) SetSnapshot(ctx context.Context, snapshot *models.DirectorySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot = snapshot
	m.storedAt = m.clockFunc()
	return nil
}

func (m *MemorySnapshotCache) ClearSnapshot(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot = nil
	return nil
}
