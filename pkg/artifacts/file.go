package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soundprediction/medgraph/pkg/types"
)

const (
	assignmentsFile = "community_assignments.json"
	statsFile       = "community_stats.json"
	summariesFile   = "community_summaries.json"
)

// FileStore keeps each artifact as a JSON file in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store, creating the directory when
// needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// SaveAssignments writes the entity-to-community assignment map.
func (f *FileStore) SaveAssignments(assignments map[string]int) error {
	return f.write(assignmentsFile, assignments)
}

// LoadAssignments reads the entity-to-community assignment map.
func (f *FileStore) LoadAssignments() (map[string]int, error) {
	var assignments map[string]int
	if err := f.read(assignmentsFile, &assignments); err != nil {
		return nil, missing(ArtifactAssignments, err)
	}
	return assignments, nil
}

// SaveStats writes the per-community statistics.
func (f *FileStore) SaveStats(stats *types.CommunityStats) error {
	return f.write(statsFile, stats)
}

// LoadStats reads the per-community statistics.
func (f *FileStore) LoadStats() (*types.CommunityStats, error) {
	var stats types.CommunityStats
	if err := f.read(statsFile, &stats); err != nil {
		return nil, missing(ArtifactStats, err)
	}
	return &stats, nil
}

// SaveSummaries writes the community summaries in community order.
func (f *FileStore) SaveSummaries(summaries []*types.CommunitySummary) error {
	return f.write(summariesFile, summaries)
}

// LoadSummaries reads the community summaries.
func (f *FileStore) LoadSummaries() ([]*types.CommunitySummary, error) {
	var summaries []*types.CommunitySummary
	if err := f.read(summariesFile, &summaries); err != nil {
		return nil, missing(ArtifactSummaries, err)
	}
	return summaries, nil
}

// Close is a no-op for the file store.
func (f *FileStore) Close() error { return nil }

func (f *FileStore) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	path := filepath.Join(f.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func (f *FileStore) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}
