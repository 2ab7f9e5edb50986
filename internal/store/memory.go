package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotSeeded is returned by persisters that hold no configuration yet.
var ErrNotSeeded = errors.New("pricing configuration not seeded")

// MemoryPersister keeps the snapshot in process memory. Useful for tests and local runs.
type MemoryPersister struct {
	mu     sync.Mutex
	snap   Snapshot
	seeded bool
	saves  int
}

// NewMemoryPersister constructs a persister holding snap.
func NewMemoryPersister(snap Snapshot) *MemoryPersister {
	return &MemoryPersister{snap: snap.Clone(), seeded: true}
}

// Load implements Persister.
func (p *MemoryPersister) Load(_ context.Context) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.seeded {
		return Snapshot{}, ErrNotSeeded
	}
	return p.snap.Clone(), nil
}

// Save implements Persister.
func (p *MemoryPersister) Save(_ context.Context, snap Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap = snap.Clone()
	p.seeded = true
	p.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}
