package in_memory

import (
	"context"
	"sync"

	"github.com/olyamironova/mbp-reconstructor/internal/domain"
	"github.com/olyamironova/mbp-reconstructor/internal/port"
)

var _ port.SnapshotCache = (*Cache)(nil)

// Cache is the in-process latest-snapshot cache.
type Cache struct {
	mu    sync.Mutex
	store map[string]*domain.Snapshot
}

func NewCache() *Cache {
	return &Cache{store: make(map[string]*domain.Snapshot)}
}

func (c *Cache) SetLatest(ctx context.Context, symbol string, snap *domain.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[symbol] = snap.DeepCopy()
	return nil
}

func (c *Cache) GetLatest(ctx context.Context, symbol string) (*domain.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.store[symbol]
	if !ok {
		return nil, nil
	}
	return snap.DeepCopy(), nil
}
