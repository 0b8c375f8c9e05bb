package cluster

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/soundprediction/medgraph/pkg/features"
	"github.com/soundprediction/medgraph/pkg/types"
)

// Defaults for candidate selection.
var DefaultCandidateCounts = []int{10, 15, 20, 25}

const (
	DefaultMinAvgSize   = 5.0
	DefaultCommunityCnt = 15
)

// Config controls candidate community counts and the selection policy.
type Config struct {
	// CandidateCounts are the community counts to evaluate, in order.
	CandidateCounts []int
	// MinAvgSize is the average community size a candidate must exceed to
	// be eligible.
	MinAvgSize float64
	// DefaultCount is used when no candidate satisfies the size
	// constraint.
	DefaultCount int
}

// NewConfig returns the default clustering configuration.
func NewConfig() Config {
	return Config{
		CandidateCounts: append([]int(nil), DefaultCandidateCounts...),
		MinAvgSize:      DefaultMinAvgSize,
		DefaultCount:    DefaultCommunityCnt,
	}
}

// Engine evaluates candidate community counts over a feature matrix.
type Engine struct {
	config Config
	logger *slog.Logger
}

// NewEngine creates a clustering engine. A nil logger falls back to
// slog.Default.
func NewEngine(config Config, logger *slog.Logger) *Engine {
	if len(config.CandidateCounts) == 0 {
		config.CandidateCounts = append([]int(nil), DefaultCandidateCounts...)
	}
	if config.MinAvgSize <= 0 {
		config.MinAvgSize = DefaultMinAvgSize
	}
	if config.DefaultCount <= 0 {
		config.DefaultCount = DefaultCommunityCnt
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{config: config, logger: logger}
}

type candidate struct {
	k       int
	labels  []int
	quality float64
	valid   bool
}

// Run clusters the matrix for every candidate count and returns the
// partition for the count with the highest quality among those whose average
// community size exceeds the threshold. If none qualifies, the configured
// default count is used. Candidates are evaluated concurrently; the matrix
// is shared read-only, and selection order is the declared candidate order,
// so results match a sequential run exactly.
func (e *Engine) Run(ctx context.Context, m *features.Matrix) (*types.Partition, error) {
	n := len(m.Rows)
	if n == 0 {
		return nil, types.ErrNoEntities
	}

	results := make([]candidate, len(e.config.CandidateCounts))
	g, ctx := errgroup.WithContext(ctx)
	for i, k := range e.config.CandidateCounts {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = e.evaluate(m, k)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := -1
	bestQuality := -1.0
	for i, c := range results {
		if !c.valid {
			continue
		}
		avgSize := float64(n) / float64(c.k)
		e.logger.Info("Evaluated candidate partition",
			"k", c.k, "quality", c.quality, "avg_size", avgSize)
		if c.quality > bestQuality && avgSize > e.config.MinAvgSize {
			best = i
			bestQuality = c.quality
		}
	}

	if best >= 0 {
		c := results[best]
		return buildPartition(m.Order, c.labels, c.k, c.quality), nil
	}

	// No candidate passed the size constraint; fall back to the default
	// count.
	e.logger.Warn("No candidate met the size constraint, using default count",
		"default_k", e.config.DefaultCount)
	c := e.evaluate(m, e.config.DefaultCount)
	if !c.valid {
		return nil, fmt.Errorf("default count %d over %d entities: %w",
			e.config.DefaultCount, n, types.ErrNoViablePartition)
	}
	return buildPartition(m.Order, c.labels, c.k, c.quality), nil
}

// evaluate clusters for one count. An infeasible count yields an invalid
// candidate; an undefined quality metric yields quality 0.0 but keeps the
// candidate eligible.
func (e *Engine) evaluate(m *features.Matrix, k int) candidate {
	labels, err := Ward(m.Rows, k)
	if err != nil {
		e.logger.Warn("Skipping infeasible candidate count", "k", k, "error", err)
		return candidate{k: k}
	}
	quality, err := Silhouette(m.Rows, labels)
	if err != nil {
		e.logger.Warn("Quality metric undefined, recording 0.0", "k", k, "error", err)
		quality = 0.0
	}
	return candidate{k: k, labels: labels, quality: quality, valid: true}
}

func buildPartition(order []string, labels []int, k int, quality float64) *types.Partition {
	members := make([][]string, k)
	for i, label := range labels {
		members[label] = append(members[label], order[i])
	}
	return &types.Partition{
		K:       k,
		Quality: quality,
		Order:   append([]string(nil), order...),
		Labels:  append([]int(nil), labels...),
		Members: members,
	}
}
