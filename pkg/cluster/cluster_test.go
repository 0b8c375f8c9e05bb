package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/medgraph/pkg/features"
	"github.com/soundprediction/medgraph/pkg/types"
)

// blobs returns rows forming well-separated groups, count rows per group.
func blobs(centers [][]float64, count int, spread float64) [][]float64 {
	var rows [][]float64
	for _, c := range centers {
		for i := 0; i < count; i++ {
			row := make([]float64, len(c))
			for j := range c {
				// Deterministic jitter, no randomness.
				row[j] = c[j] + spread*float64(i%3-1)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func TestWardSeparatesBlobs(t *testing.T) {
	rows := blobs([][]float64{{0, 0}, {100, 100}}, 4, 0.5)
	labels, err := Ward(rows, 2)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.Equal(t, labels[0], labels[i])
	}
	for i := 4; i < 8; i++ {
		assert.Equal(t, labels[4], labels[i])
	}
	assert.NotEqual(t, labels[0], labels[4])

	// Labels are dense, starting at the first row's group.
	assert.Equal(t, 0, labels[0])
	assert.Equal(t, 1, labels[4])
}

func TestWardDeterminism(t *testing.T) {
	rows := blobs([][]float64{{0, 0}, {10, 0}, {0, 10}}, 5, 1.0)
	first, err := Ward(rows, 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Ward(rows, 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestWardBounds(t *testing.T) {
	rows := blobs([][]float64{{0, 0}}, 3, 1.0)

	_, err := Ward(rows, 1)
	assert.Error(t, err)
	_, err = Ward(rows, 3)
	assert.Error(t, err)
	_, err = Ward(rows, 5)
	assert.Error(t, err)

	labels, err := Ward(rows, 2)
	require.NoError(t, err)
	assert.Len(t, labels, 3)
}

func TestSilhouetteRange(t *testing.T) {
	rows := blobs([][]float64{{0, 0}, {100, 100}}, 4, 0.5)
	labels, err := Ward(rows, 2)
	require.NoError(t, err)

	score, err := Silhouette(rows, labels)
	require.NoError(t, err)
	assert.Greater(t, score, 0.9, "well-separated blobs should score near 1")
	assert.LessOrEqual(t, score, 1.0)

	// A bad labeling that splits each blob scores worse.
	bad := []int{0, 1, 0, 1, 0, 1, 0, 1}
	badScore, err := Silhouette(rows, bad)
	require.NoError(t, err)
	assert.Less(t, badScore, score)
	assert.GreaterOrEqual(t, badScore, -1.0)
}

func TestSilhouetteUndefined(t *testing.T) {
	rows := blobs([][]float64{{0, 0}}, 4, 1.0)

	// Single cluster.
	_, err := Silhouette(rows, []int{0, 0, 0, 0})
	assert.Error(t, err)

	// As many clusters as points.
	_, err = Silhouette(rows, []int{0, 1, 2, 3})
	assert.Error(t, err)
}

func matrixFromRows(rows [][]float64) *features.Matrix {
	order := make([]string, len(rows))
	for i := range order {
		order[i] = string(rune('a' + i))
	}
	return &features.Matrix{Rows: rows, Order: order}
}

func TestEnginePartitionProperty(t *testing.T) {
	rows := blobs([][]float64{{0, 0}, {50, 0}, {0, 50}}, 7, 1.0)
	engine := NewEngine(Config{
		CandidateCounts: []int{2, 3},
		MinAvgSize:      5.0,
		DefaultCount:    3,
	}, nil)

	p, err := engine.Run(context.Background(), matrixFromRows(rows))
	require.NoError(t, err)
	require.NoError(t, p.Validate())
	assert.Equal(t, 3, p.K)
	assert.Len(t, p.Members, p.K)
}

func TestEngineSizeConstraint(t *testing.T) {
	// 12 points: k=6 would likely score well but averages 2 per community,
	// below the threshold of 5; k=2 averages 6 and qualifies.
	rows := blobs([][]float64{{0, 0}, {50, 50}}, 6, 1.0)
	engine := NewEngine(Config{
		CandidateCounts: []int{2, 6},
		MinAvgSize:      5.0,
		DefaultCount:    2,
	}, nil)

	p, err := engine.Run(context.Background(), matrixFromRows(rows))
	require.NoError(t, err)
	assert.Equal(t, 2, p.K)
}

func TestEngineDefaultFallback(t *testing.T) {
	// Every candidate fails the size constraint; the default count wins.
	rows := blobs([][]float64{{0, 0}, {50, 50}}, 4, 1.0)
	engine := NewEngine(Config{
		CandidateCounts: []int{4, 6},
		MinAvgSize:      3.0,
		DefaultCount:    2,
	}, nil)

	p, err := engine.Run(context.Background(), matrixFromRows(rows))
	require.NoError(t, err)
	assert.Equal(t, 2, p.K)
}

func TestEngineDeterminism(t *testing.T) {
	rows := blobs([][]float64{{0, 0}, {30, 0}, {0, 30}, {30, 30}}, 6, 1.0)
	engine := NewEngine(Config{
		CandidateCounts: []int{2, 3, 4},
		MinAvgSize:      5.0,
		DefaultCount:    4,
	}, nil)

	first, err := engine.Run(context.Background(), matrixFromRows(rows))
	require.NoError(t, err)
	again, err := engine.Run(context.Background(), matrixFromRows(rows))
	require.NoError(t, err)
	assert.Equal(t, first.K, again.K)
	assert.Equal(t, first.Labels, again.Labels)
	assert.Equal(t, first.Quality, again.Quality)
}

func TestEngineNoRows(t *testing.T) {
	engine := NewEngine(NewConfig(), nil)
	_, err := engine.Run(context.Background(), &features.Matrix{})
	assert.ErrorIs(t, err, types.ErrNoEntities)
}
