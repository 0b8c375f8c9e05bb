// Package community characterizes a clustered partition: per-community
// relationship tallies, type distribution, density, a specialty label from a
// keyword lexicon, and a human-readable theme. It also orchestrates the
// offline detection run and generates community summaries.
package community

import (
	"fmt"
	"strings"

	"github.com/soundprediction/medgraph/pkg/types"
)

// Analyzer computes community statistics from a partition and the graph
// snapshot it was built from.
type Analyzer struct {
	lexicon []Specialty
}

// NewAnalyzer creates an analyzer. A nil or empty lexicon falls back to the
// built-in one.
func NewAnalyzer(lexicon []Specialty) *Analyzer {
	if len(lexicon) == 0 {
		lexicon = DefaultLexicon()
	}
	return &Analyzer{lexicon: lexicon}
}

// Analyze builds the community records for every cell of the partition.
// Member slices retain the canonical entity order, which fixes every
// tie-break downstream.
func (a *Analyzer) Analyze(partition *types.Partition, entities []types.Entity, relationships []types.Relationship) ([]*types.Community, error) {
	if err := partition.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to analyze invalid partition: %w", err)
	}

	byName := make(map[string]types.Entity, len(entities))
	for _, e := range entities {
		byName[e.Name] = e
	}

	communities := make([]*types.Community, 0, partition.K)
	for id, members := range partition.Members {
		c := a.analyzeOne(id, members, byName, relationships)
		communities = append(communities, c)
	}
	return communities, nil
}

func (a *Analyzer) analyzeOne(id int, members []string, byName map[string]types.Entity, relationships []types.Relationship) *types.Community {
	memberSet := make(map[string]struct{}, len(members))
	for _, name := range members {
		memberSet[name] = struct{}{}
	}

	internal := types.NewCounter()
	external := types.NewCounter()
	for _, rel := range relationships {
		_, srcIn := memberSet[rel.Source]
		_, tgtIn := memberSet[rel.Target]
		switch {
		case srcIn && tgtIn:
			internal.Inc(rel.Type, 1)
		case srcIn || tgtIn:
			external.Inc(rel.Type, 1)
		}
	}

	typeDist := types.NewCounter()
	for _, name := range members {
		typeDist.Inc(string(entityType(byName, name)), 1)
	}
	dominant := types.UnknownType
	if key, _, ok := typeDist.Max(); ok {
		dominant = types.EntityType(key)
	}

	size := len(members)

	// Distinct internal relationship types over possible member pairs.
	// Type diversity, not edge density; kept exactly as persisted stats
	// expect it.
	pairs := float64(size*(size-1)) / 2
	if pairs < 1 {
		pairs = 1
	}
	density := float64(internal.Len()) / pairs

	return &types.Community{
		ID:                    id,
		Members:               append([]string(nil), members...),
		Size:                  size,
		DominantType:          dominant,
		Specialty:             a.specialty(members, byName),
		Theme:                 theme(members, byName, typeDist),
		Density:               density,
		TypeDistribution:      typeDist,
		InternalRelationships: internal,
		ExternalRelationships: external,
	}
}

// specialty scores every lexicon category by keyword hits against each
// member's name and description. The highest cumulative count wins; ties go
// to the earlier-declared category; zero hits everywhere means General
// Medicine.
func (a *Analyzer) specialty(members []string, byName map[string]types.Entity) string {
	scores := make([]int, len(a.lexicon))
	for _, name := range members {
		e := byName[name]
		text := strings.ToLower(name + " " + e.Description)
		for i, category := range a.lexicon {
			for _, kw := range category.Keywords {
				if strings.Contains(text, kw) {
					scores[i]++
				}
			}
		}
	}

	best := -1
	bestScore := 0
	for i, score := range scores {
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return GeneralMedicine
	}
	return a.lexicon[best].Name
}

// themeRule maps condition-name substrings to a theme, checked in priority
// order.
type themeRule struct {
	substrings []string
	theme      string
}

var conditionThemes = []themeRule{
	{[]string{"heart", "cardiac", "aortic"}, "Cardiovascular conditions and treatments"},
	{[]string{"liver", "hepatic", "cirrhosis"}, "Liver diseases and complications"},
	{[]string{"hip", "knee", "bone"}, "Orthopedic conditions and procedures"},
	{[]string{"blood", "anemia", "hemoglobin"}, "Hematological conditions and blood disorders"},
}

// theme derives the community's descriptive theme through a fixed precedence
// cascade: condition-domain themes first, then the remaining entity types,
// then a generic mixed theme. The order decides the output for ambiguous
// communities and must not be rearranged.
func theme(members []string, byName map[string]types.Entity, typeDist *types.Counter) string {
	if typeDist.Get(string(types.ConditionType)) > 0 {
		var conditions []string
		for _, name := range members {
			if entityType(byName, name) == types.ConditionType {
				conditions = append(conditions, name)
			}
		}
		for _, rule := range conditionThemes {
			for _, name := range conditions {
				e := byName[name]
				text := strings.ToLower(name + " " + e.Description)
				for _, sub := range rule.substrings {
					if strings.Contains(text, sub) {
						return rule.theme
					}
				}
			}
		}
		return fmt.Sprintf("Medical conditions (%d conditions)", len(conditions))
	}

	if n := typeDist.Get(string(types.MedicationType)); n > 0 {
		return fmt.Sprintf("Medications and treatments (%d medications)", n)
	}
	if n := typeDist.Get(string(types.AnatomyType)); n > 0 {
		return fmt.Sprintf("Anatomical structures (%d structures)", n)
	}
	if n := typeDist.Get(string(types.LabValueType)); n > 0 {
		return fmt.Sprintf("Laboratory values and tests (%d lab values)", n)
	}
	if n := typeDist.Get(string(types.ProcedureType)); n > 0 {
		return fmt.Sprintf("Medical procedures (%d procedures)", n)
	}
	return fmt.Sprintf("Mixed medical entities (%d entities)", len(members))
}

func entityType(byName map[string]types.Entity, name string) types.EntityType {
	if e, ok := byName[name]; ok && e.Type != "" {
		return e.Type
	}
	return types.UnknownType
}
