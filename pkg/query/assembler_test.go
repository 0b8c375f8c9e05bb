package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/medgraph/pkg/types"
)

func assemblerFixture() (*Assembler, *Resolver) {
	entities := []types.Entity{
		{Name: "ventral hernia", Type: types.ConditionType, Description: "abdominal wall defect"},
		{Name: "mesh repair", Type: types.ProcedureType},
	}
	relationships := []types.Relationship{
		{Source: "ventral hernia", Target: "mesh repair", Type: "TREATED_BY"},
	}
	summaries := []*types.CommunitySummary{
		{ID: 0, Specialty: "Gastroenterology", Theme: "Abdominal conditions", Size: 2, SampleEntities: []string{"ventral hernia", "mesh repair"}},
	}
	assignments := map[string]int{"ventral hernia": 0, "mesh repair": 0}
	return NewAssembler(assignments, summaries), NewResolver(entities, relationships)
}

func TestAssembleLocal(t *testing.T) {
	a, r := assemblerFixture()

	rc := a.AssembleLocal("What is ventral hernia?", r.Resolve("What is ventral hernia?"), r)
	assert.Equal(t, types.QueryLocal, rc.Class)
	require.Len(t, rc.Entities, 1)

	ec := rc.Entities[0]
	assert.Equal(t, "ventral hernia", ec.Entity.Name)
	assert.Equal(t, "Gastroenterology", ec.Specialty)
	assert.Equal(t, 0, ec.CommunityID)
	require.Len(t, ec.Neighbors, 1)
	assert.Equal(t, "mesh repair", ec.Neighbors[0].Entity.Name)
}

func TestAssembleLocalUnassignedEntity(t *testing.T) {
	a := NewAssembler(nil, nil)
	r := NewResolver([]types.Entity{{Name: "orphan", Type: types.ConditionType}}, nil)

	rc := a.AssembleLocal("orphan", r.Resolve("orphan"), r)
	require.Len(t, rc.Entities, 1)
	assert.Equal(t, unknownSpecialty, rc.Entities[0].Specialty)
	assert.Equal(t, -1, rc.Entities[0].CommunityID)
}

func TestAssembleGlobalCapsSamples(t *testing.T) {
	a, _ := assemblerFixture()
	summary := &types.CommunitySummary{
		ID: 1, Specialty: "Cardiology", Theme: "Cardiovascular conditions", Size: 9,
		SampleEntities: []string{"a", "b", "c", "d", "e", "f", "g"},
	}

	rc := a.AssembleGlobal("overview", []*types.CommunitySummary{summary})
	assert.Equal(t, types.QueryGlobal, rc.Class)
	require.Len(t, rc.Communities, 1)
	assert.Len(t, rc.Communities[0].SampleEntities, 5)
}

func TestLocalFallbackAnswer(t *testing.T) {
	a, r := assemblerFixture()
	rc := a.AssembleLocal("What is ventral hernia?", r.Resolve("What is ventral hernia?"), r)

	text := a.FallbackAnswer(rc)
	assert.Contains(t, text, "Based on the medical knowledge graph:")
	assert.Contains(t, text, "**ventral hernia** (CONDITION):")
	assert.Contains(t, text, "- Description: abdominal wall defect")
	assert.Contains(t, text, "- Medical specialty: Gastroenterology")
	assert.Contains(t, text, "- Related to: mesh repair")
}

func TestGlobalFallbackAnswer(t *testing.T) {
	a, _ := assemblerFixture()
	rc := a.AssembleGlobal("overview", []*types.CommunitySummary{
		{ID: 0, Specialty: "Cardiology", Theme: "Cardiovascular conditions", Size: 12, SampleEntities: []string{"heart failure", "aortic stenosis"}},
	})

	text := a.FallbackAnswer(rc)
	assert.Contains(t, text, "Based on the medical knowledge communities:")
	assert.Contains(t, text, "**Cardiology** (Community 0):")
	assert.Contains(t, text, "- Cardiovascular conditions")
	assert.Contains(t, text, "- Size: 12 entities")
	assert.Contains(t, text, "- Key concepts: heart failure, aortic stenosis")
}
