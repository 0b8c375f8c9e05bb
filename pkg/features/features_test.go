package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/medgraph/pkg/types"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "lowercases and splits",
			in:   "Ventral Hernia CONDITION",
			want: []string{"ventral", "hernia", "condition"},
		},
		{
			name: "drops stop words and single chars",
			in:   "a defect in the abdominal wall",
			want: []string{"defect", "abdominal", "wall"},
		},
		{
			name: "keeps digits",
			in:   "stage 2b fibrosis",
			want: []string{"stage", "2b", "fibrosis"},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNgrams(t *testing.T) {
	got := ngrams([]string{"mesh", "repair", "procedure"})
	assert.Equal(t, []string{
		"mesh", "repair", "procedure",
		"mesh repair", "repair procedure",
	}, got)

	assert.Equal(t, []string{"mesh"}, ngrams([]string{"mesh"}))
}

func testEntities() []types.Entity {
	return []types.Entity{
		{Name: "ventral hernia", Type: types.ConditionType, Description: "abdominal wall defect"},
		{Name: "mesh repair", Type: types.ProcedureType, Description: "surgical hernia repair"},
		{Name: "aspirin", Type: types.MedicationType, Description: "antiplatelet medication"},
	}
}

func TestSynthesizeShape(t *testing.T) {
	rels := []types.Relationship{
		{Source: "ventral hernia", Target: "mesh repair", Type: "TREATED_BY", Strength: 1.0},
	}
	m, err := Synthesize(testEntities(), rels, NewConfig())
	require.NoError(t, err)

	rows, cols := m.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, len(m.Terms)+len(m.RelTypes), cols)
	assert.Equal(t, []string{"ventral hernia", "mesh repair", "aspirin"}, m.Order)
	assert.Equal(t, []string{"TREATED_BY"}, m.RelTypes)
}

func TestSynthesizeIncidenceSymmetric(t *testing.T) {
	rels := []types.Relationship{
		{Source: "ventral hernia", Target: "mesh repair", Type: "TREATED_BY"},
		{Source: "mesh repair", Target: "ventral hernia", Type: "TREATS"},
	}
	m, err := Synthesize(testEntities(), rels, NewConfig())
	require.NoError(t, err)

	base := len(m.Terms)
	// Both endpoints accumulate each relationship type.
	assert.Equal(t, 1.0, m.Rows[0][base])   // ventral hernia, TREATED_BY
	assert.Equal(t, 1.0, m.Rows[1][base])   // mesh repair, TREATED_BY
	assert.Equal(t, 1.0, m.Rows[0][base+1]) // ventral hernia, TREATS
	assert.Equal(t, 1.0, m.Rows[1][base+1]) // mesh repair, TREATS

	// The isolated entity gets an all-zero incidence block.
	for _, v := range m.Rows[2][base:] {
		assert.Zero(t, v)
	}
}

func TestSynthesizeSkipsUnknownEndpoints(t *testing.T) {
	rels := []types.Relationship{
		{Source: "ventral hernia", Target: "nonexistent", Type: "TREATED_BY"},
		{Source: "ghost", Target: "mesh repair", Type: "TREATS"},
		{Source: "ventral hernia", Target: "mesh repair", Type: "TREATED_BY"},
	}
	m, err := Synthesize(testEntities(), rels, NewConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, m.SkippedRelationships)
	assert.Equal(t, []string{"TREATED_BY"}, m.RelTypes)
}

func TestSynthesizeEmptyDescription(t *testing.T) {
	entities := []types.Entity{
		{Name: "aspirin", Type: types.MedicationType},
		{Name: "warfarin", Type: types.MedicationType},
	}
	m, err := Synthesize(entities, nil, NewConfig())
	require.NoError(t, err)

	// Lexical features come from name+type alone.
	assert.Contains(t, m.Terms, "aspirin")
	assert.Contains(t, m.Terms, "warfarin")
	var nonZero bool
	for _, v := range m.Rows[0] {
		if v != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero)
}

func TestSynthesizeFatalOnDegenerateCorpus(t *testing.T) {
	_, err := Synthesize(nil, nil, NewConfig())
	assert.ErrorIs(t, err, types.ErrNoEntities)

	// Stop-word-only corpus yields no vocabulary.
	entities := []types.Entity{{Name: "of the", Type: "is"}}
	_, err = Synthesize(entities, nil, NewConfig())
	assert.ErrorIs(t, err, types.ErrEmptyCorpus)
}

func TestVocabularyCapAndDeterminism(t *testing.T) {
	entities := testEntities()
	cfg := NewConfig()
	cfg.MaxFeatures = 5

	m1, err := Synthesize(entities, nil, cfg)
	require.NoError(t, err)
	require.LessOrEqual(t, len(m1.Terms), 5)

	m2, err := Synthesize(entities, nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, m1.Terms, m2.Terms)
	assert.Equal(t, m1.Rows, m2.Rows)
}

func TestMaxDocFreqDropsUbiquitousTerms(t *testing.T) {
	// "medication" appears in every document and must be dropped at the
	// default 0.95 ceiling; the distinctive names survive.
	entities := []types.Entity{
		{Name: "aspirin", Type: types.MedicationType, Description: "medication"},
		{Name: "warfarin", Type: types.MedicationType, Description: "medication"},
		{Name: "heparin", Type: types.MedicationType, Description: "medication"},
	}
	m, err := Synthesize(entities, nil, NewConfig())
	require.NoError(t, err)
	assert.NotContains(t, m.Terms, "medication")
	assert.Contains(t, m.Terms, "aspirin")
}
