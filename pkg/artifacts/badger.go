package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/medgraph/pkg/types"
)

// BadgerStore keeps the artifacts in an embedded BadgerDB, one key per
// artifact. Suited to deployments where the detection and query phases share
// a host but no filesystem layout.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at path. An empty path
// opens an in-memory database, which is what tests want.
func NewBadgerStore(path string) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// SaveAssignments writes the entity-to-community assignment map.
func (b *BadgerStore) SaveAssignments(assignments map[string]int) error {
	return b.put(ArtifactAssignments, assignments)
}

// LoadAssignments reads the entity-to-community assignment map.
func (b *BadgerStore) LoadAssignments() (map[string]int, error) {
	var assignments map[string]int
	if err := b.get(ArtifactAssignments, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// SaveStats writes the per-community statistics.
func (b *BadgerStore) SaveStats(stats *types.CommunityStats) error {
	return b.put(ArtifactStats, stats)
}

// LoadStats reads the per-community statistics.
func (b *BadgerStore) LoadStats() (*types.CommunityStats, error) {
	var stats types.CommunityStats
	if err := b.get(ArtifactStats, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SaveSummaries writes the community summaries in community order.
func (b *BadgerStore) SaveSummaries(summaries []*types.CommunitySummary) error {
	return b.put(ArtifactSummaries, summaries)
}

// LoadSummaries reads the community summaries.
func (b *BadgerStore) LoadSummaries() ([]*types.CommunitySummary, error) {
	var summaries []*types.CommunitySummary
	if err := b.get(ArtifactSummaries, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Close closes the underlying database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}

func (b *BadgerStore) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (b *BadgerStore) get(key string, v any) error {
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(data []byte) error {
			return json.Unmarshal(data, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return missing(key, err)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	return nil
}
