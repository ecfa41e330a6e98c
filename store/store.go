// Package store provides snapshot store implementations behind the
// engine.Store contract. The engine writes through after every mutation
// and reads once at startup.
package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Digital-Creators-Team/slot-machine-core/engine"
)

// MemoryStore keeps the snapshot in process memory. Used by tests and as
// the degraded fallback when no durable backend is configured.
type MemoryStore struct {
	mu    sync.Mutex
	rules engine.Rules
	data  []byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(rules engine.Rules) *MemoryStore {
	return &MemoryStore{rules: rules}
}

// Save stores the snapshot
func (m *MemoryStore) Save(ctx context.Context, snap *engine.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Load returns the stored snapshot, nil when none was saved
func (m *MemoryStore) Load(ctx context.Context) (*engine.Snapshot, error) {
	m.mu.Lock()
	data := m.data
	m.mu.Unlock()
	if data == nil {
		return nil, nil
	}
	return engine.DecodeSnapshot(data, m.rules)
}

// Clear drops the stored snapshot
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}
