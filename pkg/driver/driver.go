// Package driver provides graph database access for the medical knowledge
// graph: fetching the entity and relationship snapshot, and persisting
// detected communities back into the graph.
package driver

import (
	"context"

	"github.com/soundprediction/medgraph/pkg/types"
)

// GraphProvider represents the type of graph database provider.
type GraphProvider string

const (
	GraphProviderNeo4j    GraphProvider = "neo4j"
	GraphProviderMemgraph GraphProvider = "memgraph"
	GraphProviderMemory   GraphProvider = "memory"
)

// GraphDriver defines the graph database operations the system needs. The
// detection phase reads the full snapshot and writes communities back; the
// query phase only reads.
type GraphDriver interface {
	// FetchEntities returns every entity in the graph. The returned order
	// is the canonical entity order: feature rows, cluster labels, and all
	// downstream tie-breaks follow it.
	FetchEntities(ctx context.Context) ([]types.Entity, error)

	// FetchRelationships returns every relationship in the graph.
	FetchRelationships(ctx context.Context) ([]types.Relationship, error)

	// ClearCommunities removes all previously persisted community nodes
	// and their membership edges.
	ClearCommunities(ctx context.Context) error

	// PersistCommunities writes community nodes and BELONGS_TO membership
	// edges for a fresh detection run.
	PersistCommunities(ctx context.Context, communities []*types.Community) error

	// PersistSummaries attaches generated titles and summaries to the
	// persisted community nodes.
	PersistSummaries(ctx context.Context, summaries []*types.CommunitySummary) error

	// Provider reports which backend this driver talks to.
	Provider() GraphProvider

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
