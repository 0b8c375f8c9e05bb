// Package artifacts persists the three detection outputs the query phase
// depends on: the entity-to-community assignments, the per-community
// statistics, and the generated summaries. A query engine refuses to start
// when any of the three is missing.
package artifacts

import (
	"fmt"

	"github.com/soundprediction/medgraph/pkg/types"
)

// Artifact names, used in storage keys and missing-artifact errors.
const (
	ArtifactAssignments = "community_assignments"
	ArtifactStats       = "community_stats"
	ArtifactSummaries   = "community_summaries"
)

// Store persists and loads the detection artifacts.
type Store interface {
	SaveAssignments(assignments map[string]int) error
	LoadAssignments() (map[string]int, error)

	SaveStats(stats *types.CommunityStats) error
	LoadStats() (*types.CommunityStats, error)

	SaveSummaries(summaries []*types.CommunitySummary) error
	LoadSummaries() ([]*types.CommunitySummary, error)

	Close() error
}

// Config selects and configures a store backend.
type Config struct {
	// Backend is "file" or "badger".
	Backend string
	// Path is the directory holding the artifacts.
	Path string
}

// NewStore builds a store from config.
func NewStore(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Path)
	case "badger":
		return NewBadgerStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown artifact store backend %q", cfg.Backend)
	}
}

func missing(name string, err error) error {
	return fmt.Errorf("%s: %w: %v", name, types.ErrMissingArtifact, err)
}
