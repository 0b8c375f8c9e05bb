package driver

import (
	"context"
	"sync"

	"github.com/soundprediction/medgraph/pkg/types"
)

// MemoryDriver is an in-memory GraphDriver for tests and local development.
// It serves a fixed snapshot and records what gets persisted back.
type MemoryDriver struct {
	mu            sync.RWMutex
	entities      []types.Entity
	relationships []types.Relationship
	communities   []*types.Community
	summaries     []*types.CommunitySummary
	closed        bool
}

// NewMemoryDriver creates a memory driver serving the given snapshot.
func NewMemoryDriver(entities []types.Entity, relationships []types.Relationship) *MemoryDriver {
	return &MemoryDriver{
		entities:      append([]types.Entity(nil), entities...),
		relationships: append([]types.Relationship(nil), relationships...),
	}
}

// FetchEntities returns the snapshot's entities in their fixed order.
func (m *MemoryDriver) FetchEntities(_ context.Context) ([]types.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.Entity(nil), m.entities...), nil
}

// FetchRelationships returns the snapshot's relationships.
func (m *MemoryDriver) FetchRelationships(_ context.Context) ([]types.Relationship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.Relationship(nil), m.relationships...), nil
}

// ClearCommunities drops any previously persisted communities.
func (m *MemoryDriver) ClearCommunities(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.communities = nil
	m.summaries = nil
	return nil
}

// PersistCommunities records the communities of a detection run.
func (m *MemoryDriver) PersistCommunities(_ context.Context, communities []*types.Community) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.communities = append(m.communities, communities...)
	return nil
}

// PersistSummaries records the generated summaries.
func (m *MemoryDriver) PersistSummaries(_ context.Context, summaries []*types.CommunitySummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, summaries...)
	return nil
}

// Communities returns what PersistCommunities stored.
func (m *MemoryDriver) Communities() []*types.Community {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*types.Community(nil), m.communities...)
}

// Summaries returns what PersistSummaries stored.
func (m *MemoryDriver) Summaries() []*types.CommunitySummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*types.CommunitySummary(nil), m.summaries...)
}

// Provider reports the backend type.
func (m *MemoryDriver) Provider() GraphProvider {
	return GraphProviderMemory
}

// Close marks the driver closed.
func (m *MemoryDriver) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
