package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/medgraph/pkg/artifacts"
	"github.com/soundprediction/medgraph/pkg/driver"
	"github.com/soundprediction/medgraph/pkg/llm"
	"github.com/soundprediction/medgraph/pkg/types"
)

type scriptedLLM struct {
	content string
	err     error
	calls   int
}

func (s *scriptedLLM) Chat(_ context.Context, _ []llm.Message) (*llm.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.content}, nil
}

func seededStore(t *testing.T) artifacts.Store {
	t.Helper()
	store, err := artifacts.NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.SaveAssignments(map[string]int{
		"ventral hernia": 0,
		"mesh repair":    0,
		"heart failure":  1,
	}))
	require.NoError(t, store.SaveStats(&types.CommunityStats{
		QualityScore:     0.4,
		TotalCommunities: 2,
		Communities:      map[string]*types.Community{},
	}))
	require.NoError(t, store.SaveSummaries([]*types.CommunitySummary{
		{ID: 0, Specialty: "Gastroenterology", Theme: "Abdominal conditions", Size: 2, SampleEntities: []string{"ventral hernia"}},
		{ID: 1, Specialty: "Cardiology", Theme: "Cardiovascular conditions", Size: 1, SampleEntities: []string{"heart failure"}},
	}))
	return store
}

func testGraph() *driver.MemoryDriver {
	entities := []types.Entity{
		{Name: "ventral hernia", Type: types.ConditionType, Description: "abdominal wall defect"},
		{Name: "mesh repair", Type: types.ProcedureType},
		{Name: "heart failure", Type: types.ConditionType},
	}
	relationships := []types.Relationship{
		{Source: "ventral hernia", Target: "mesh repair", Type: "TREATED_BY"},
	}
	return driver.NewMemoryDriver(entities, relationships)
}

func TestNewEngineRequiresAllArtifacts(t *testing.T) {
	ctx := context.Background()
	store, err := artifacts.NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	// Assignments and stats present, summaries missing.
	require.NoError(t, store.SaveAssignments(map[string]int{}))
	require.NoError(t, store.SaveStats(&types.CommunityStats{}))

	_, err = NewEngine(ctx, testGraph(), store, nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingArtifact)
	assert.Contains(t, err.Error(), artifacts.ArtifactSummaries)
}

func TestAnswerLocalWithGeneration(t *testing.T) {
	ctx := context.Background()
	client := &scriptedLLM{content: "A ventral hernia is a defect of the abdominal wall."}
	e, err := NewEngine(ctx, testGraph(), seededStore(t), client, nil, nil)
	require.NoError(t, err)

	answer, err := e.Answer(ctx, "What is ventral hernia?")
	require.NoError(t, err)
	assert.Equal(t, types.QueryLocal, answer.Class)
	assert.True(t, answer.Success)
	assert.Equal(t, client.content, answer.Text)
	assert.Equal(t, 1, client.calls)
}

func TestAnswerLocalFallbackOnGenerationFailure(t *testing.T) {
	ctx := context.Background()
	client := &scriptedLLM{err: errors.New("provider unavailable")}
	e, err := NewEngine(ctx, testGraph(), seededStore(t), client, nil, nil)
	require.NoError(t, err)

	answer, err := e.Answer(ctx, "What is ventral hernia?")
	require.NoError(t, err)
	assert.Equal(t, types.QueryLocal, answer.Class)
	assert.False(t, answer.Success)
	assert.Contains(t, answer.Text, "Based on the medical knowledge graph:")
	assert.Contains(t, answer.Text, "**ventral hernia** (CONDITION):")
	assert.Contains(t, answer.Text, "- Related to: mesh repair")
}

func TestAnswerLocalNoEntities(t *testing.T) {
	ctx := context.Background()
	e, err := NewEngine(ctx, testGraph(), seededStore(t), nil, nil, nil)
	require.NoError(t, err)

	answer, err := e.Answer(ctx, "What is xyzzy?")
	require.NoError(t, err)
	assert.Equal(t, types.QueryLocal, answer.Class)
	assert.False(t, answer.Success)
	assert.Equal(t, noEntitiesAnswer, answer.Text)
}

func TestAnswerGlobal(t *testing.T) {
	ctx := context.Background()
	e, err := NewEngine(ctx, testGraph(), seededStore(t), nil, nil, nil)
	require.NoError(t, err)

	answer, err := e.Answer(ctx, "Give me an overview of cardiovascular diseases")
	require.NoError(t, err)
	assert.Equal(t, types.QueryGlobal, answer.Class)
	assert.False(t, answer.Success)
	assert.Contains(t, answer.Text, "Based on the medical knowledge communities:")
	assert.Contains(t, answer.Text, "**Cardiology** (Community 1):")
	// Only the lexically matching community is retrieved.
	assert.NotContains(t, answer.Text, "Gastroenterology")
}

func TestAnswerGlobalGeneration(t *testing.T) {
	ctx := context.Background()
	client := &scriptedLLM{content: "The graph covers abdominal and cardiovascular medicine."}
	e, err := NewEngine(ctx, testGraph(), seededStore(t), client, nil, nil)
	require.NoError(t, err)

	answer, err := e.Answer(ctx, "How many specialties are covered?")
	require.NoError(t, err)
	assert.Equal(t, types.QueryGlobal, answer.Class)
	assert.True(t, answer.Success)
	assert.Equal(t, client.content, answer.Text)
}

func TestEngineAccessors(t *testing.T) {
	ctx := context.Background()
	e, err := NewEngine(ctx, testGraph(), seededStore(t), nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, e.Stats().TotalCommunities)
	assert.Len(t, e.Summaries(), 2)
}
