package medgraph

import (
	"context"

	"github.com/soundprediction/medgraph/pkg/types"
)

// This file defines focused interfaces; the main MedGraph interface is
// composed from them. Consumers should depend on the smallest interface that
// meets their needs.

// CommunityDetector runs the offline detection pipeline.
type CommunityDetector interface {
	// DetectCommunities partitions the graph's entities into communities,
	// characterizes and summarizes them, and persists the results. It
	// replaces any previous run's output.
	DetectCommunities(ctx context.Context) (*types.DetectionResult, error)
}

// QuestionAnswerer answers questions against the graph and the persisted
// detection artifacts.
type QuestionAnswerer interface {
	// Answer classifies, retrieves for, and answers one question.
	Answer(ctx context.Context, question string) (*types.Answer, error)
}

// CommunityReader exposes the persisted community layer.
type CommunityReader interface {
	// Communities returns the persisted community summaries in community
	// order.
	Communities(ctx context.Context) ([]*types.CommunitySummary, error)

	// Stats returns the persisted community statistics.
	Stats(ctx context.Context) (*types.CommunityStats, error)
}

// MedGraph is the main interface for the medical knowledge-graph system.
type MedGraph interface {
	CommunityDetector
	QuestionAnswerer
	CommunityReader

	// Close closes all connections and cleans up resources.
	Close(ctx context.Context) error
}

// Compile-time check that Client satisfies the composed interface.
var _ MedGraph = (*Client)(nil)
