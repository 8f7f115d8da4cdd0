package state

import (
	"context"
	"sync"

	"sensor-bot/internal/models"
)

// SnapshotChannel is a single-slot channel holding the most recent snapshot.
// Publishing replaces the slot; reading never consumes it.
type SnapshotChannel struct {
	mu    sync.RWMutex
	snap  models.Snapshot
	ready chan struct{}
	once  sync.Once
}

func NewSnapshotChannel() *SnapshotChannel {
	return &SnapshotChannel{ready: make(chan struct{})}
}

// Publish replaces the current snapshot.
func (c *SnapshotChannel) Publish(snap models.Snapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	c.once.Do(func() { close(c.ready) })
}

// Latest blocks until a snapshot has been published, then returns the newest one.
func (c *SnapshotChannel) Latest(ctx context.Context) (models.Snapshot, error) {
	select {
	case <-ctx.Done():
		return models.Snapshot{}, ctx.Err()
	case <-c.ready:
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap, nil
}

// Peek returns the newest snapshot without blocking. ok is false before the first publish.
func (c *SnapshotChannel) Peek() (snap models.Snapshot, ok bool) {
	select {
	case <-c.ready:
	default:
		return models.Snapshot{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap, true
}
