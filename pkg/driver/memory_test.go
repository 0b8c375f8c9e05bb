package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/medgraph/pkg/types"
)

func TestMemoryDriverSnapshot(t *testing.T) {
	entities := []types.Entity{
		{Name: "heart failure", Type: types.ConditionType},
		{Name: "furosemide", Type: types.MedicationType},
	}
	relationships := []types.Relationship{
		{Source: "heart failure", Target: "furosemide", Type: "TREATED_BY", Strength: 0.9},
	}
	d := NewMemoryDriver(entities, relationships)
	ctx := context.Background()

	gotEntities, err := d.FetchEntities(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities, gotEntities)

	gotRels, err := d.FetchRelationships(ctx)
	require.NoError(t, err)
	assert.Equal(t, relationships, gotRels)

	assert.Equal(t, GraphProviderMemory, d.Provider())
}

func TestMemoryDriverPersistAndClear(t *testing.T) {
	d := NewMemoryDriver(nil, nil)
	ctx := context.Background()

	require.NoError(t, d.PersistCommunities(ctx, []*types.Community{{ID: 0, Size: 2}}))
	require.NoError(t, d.PersistSummaries(ctx, []*types.CommunitySummary{{ID: 0, Title: "t"}}))
	assert.Len(t, d.Communities(), 1)
	assert.Len(t, d.Summaries(), 1)

	require.NoError(t, d.ClearCommunities(ctx))
	assert.Empty(t, d.Communities())
	assert.Empty(t, d.Summaries())
}

func TestMemoryDriverFetchCopiesAreIndependent(t *testing.T) {
	d := NewMemoryDriver([]types.Entity{{Name: "a"}}, nil)
	ctx := context.Background()

	first, err := d.FetchEntities(ctx)
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := d.FetchEntities(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", second[0].Name)
}
