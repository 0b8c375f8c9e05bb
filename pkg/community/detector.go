package community

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/soundprediction/medgraph/pkg/artifacts"
	"github.com/soundprediction/medgraph/pkg/cluster"
	"github.com/soundprediction/medgraph/pkg/driver"
	"github.com/soundprediction/medgraph/pkg/features"
	"github.com/soundprediction/medgraph/pkg/types"
)

// Detector runs the full offline detection pipeline: fetch the graph
// snapshot, synthesize feature vectors, cluster, characterize and summarize
// the communities, then persist the results to the graph and the artifact
// store. The three persisted artifacts are the query phase's contract.
type Detector struct {
	graph      driver.GraphDriver
	store      artifacts.Store
	engine     *cluster.Engine
	analyzer   *Analyzer
	summarizer *Summarizer
	logger     *slog.Logger
}

// NewDetector wires a detector. The summarizer may be built around a nil
// generation client, in which case every summary is the fallback.
func NewDetector(graph driver.GraphDriver, store artifacts.Store, engine *cluster.Engine, analyzer *Analyzer, summarizer *Summarizer, logger *slog.Logger) *Detector {
	if engine == nil {
		engine = cluster.NewEngine(cluster.NewConfig(), logger)
	}
	if analyzer == nil {
		analyzer = NewAnalyzer(nil)
	}
	if summarizer == nil {
		summarizer = NewSummarizer(nil, nil, logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		graph:      graph,
		store:      store,
		engine:     engine,
		analyzer:   analyzer,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Run executes one detection pass and persists its outputs.
func (d *Detector) Run(ctx context.Context) (*types.DetectionResult, error) {
	entities, err := d.graph.FetchEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entities: %w", err)
	}
	if len(entities) == 0 {
		return nil, types.ErrNoEntities
	}
	relationships, err := d.graph.FetchRelationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch relationships: %w", err)
	}
	d.logger.Info("Loaded graph snapshot",
		"entities", len(entities), "relationships", len(relationships))

	matrix, err := features.Synthesize(entities, relationships, features.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("feature synthesis failed: %w", err)
	}
	if matrix.SkippedRelationships > 0 {
		d.logger.Warn("Skipped relationships with unknown endpoints",
			"count", matrix.SkippedRelationships)
	}

	partition, err := d.engine.Run(ctx, matrix)
	if err != nil {
		return nil, fmt.Errorf("community detection failed: %w", err)
	}
	d.logger.Info("Detected communities",
		"communities", partition.K, "silhouette", partition.Quality)

	communities, err := d.analyzer.Analyze(partition, entities, relationships)
	if err != nil {
		return nil, fmt.Errorf("community analysis failed: %w", err)
	}

	summaries := d.summarizer.SummarizeAll(ctx, communities, entities)

	if err := d.persistGraph(ctx, communities, summaries); err != nil {
		return nil, err
	}
	if err := d.persistArtifacts(partition, communities, summaries); err != nil {
		return nil, err
	}

	return &types.DetectionResult{
		Partition:            partition,
		Communities:          communities,
		Summaries:            summaries,
		SkippedRelationships: matrix.SkippedRelationships,
	}, nil
}

// persistGraph replaces the graph's community layer with this run's output.
func (d *Detector) persistGraph(ctx context.Context, communities []*types.Community, summaries []*types.CommunitySummary) error {
	if err := d.graph.ClearCommunities(ctx); err != nil {
		return fmt.Errorf("failed to clear previous communities: %w", err)
	}
	if err := d.graph.PersistCommunities(ctx, communities); err != nil {
		return fmt.Errorf("failed to persist communities: %w", err)
	}
	if err := d.graph.PersistSummaries(ctx, summaries); err != nil {
		return fmt.Errorf("failed to persist summaries: %w", err)
	}
	return nil
}

// persistArtifacts writes the three artifacts the query phase loads:
// assignments, statistics, and summaries.
func (d *Detector) persistArtifacts(partition *types.Partition, communities []*types.Community, summaries []*types.CommunitySummary) error {
	assignments := make(map[string]int, len(partition.Order))
	for i, name := range partition.Order {
		assignments[name] = partition.Labels[i]
	}
	if err := d.store.SaveAssignments(assignments); err != nil {
		return fmt.Errorf("failed to save assignments: %w", err)
	}

	stats := &types.CommunityStats{
		QualityScore:     partition.Quality,
		TotalCommunities: partition.K,
		Communities:      make(map[string]*types.Community, len(communities)),
	}
	for _, c := range communities {
		stats.Communities[strconv.Itoa(c.ID)] = c
	}
	if err := d.store.SaveStats(stats); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}

	if err := d.store.SaveSummaries(summaries); err != nil {
		return fmt.Errorf("failed to save summaries: %w", err)
	}
	return nil
}
