package query

import (
	"fmt"
	"strings"

	"github.com/soundprediction/medgraph/pkg/types"
)

// unknownSpecialty labels entities whose community has no persisted summary.
const unknownSpecialty = "Unknown specialty"

// Assembler builds the retrieval context handed to answer generation. The
// assembled structure is the full contract: the generation prompt and the
// rule-based fallback both render from it.
type Assembler struct {
	assignments map[string]int
	summaryByID map[int]*types.CommunitySummary
}

// NewAssembler creates an assembler over the persisted assignment map and
// community summaries.
func NewAssembler(assignments map[string]int, summaries []*types.CommunitySummary) *Assembler {
	byID := make(map[int]*types.CommunitySummary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}
	return &Assembler{assignments: assignments, summaryByID: byID}
}

// AssembleLocal builds the context for an entity-specific question: one
// record per resolved entity with its neighborhood and community specialty.
func (a *Assembler) AssembleLocal(question string, entities []types.Entity, resolver *Resolver) *types.RetrievalContext {
	rc := &types.RetrievalContext{Question: question, Class: types.QueryLocal}
	for _, e := range entities {
		ec := types.EntityContext{
			Entity:      e,
			Neighbors:   resolver.Neighbors(e.Name),
			Specialty:   unknownSpecialty,
			CommunityID: -1,
		}
		if id, ok := a.assignments[e.Name]; ok {
			ec.CommunityID = id
			if s, ok := a.summaryByID[id]; ok {
				ec.Specialty = s.Specialty
			}
		}
		rc.Entities = append(rc.Entities, ec)
	}
	return rc
}

// AssembleGlobal builds the context for a graph-wide question: one record
// per retrieved community.
func (a *Assembler) AssembleGlobal(question string, communities []*types.CommunitySummary) *types.RetrievalContext {
	rc := &types.RetrievalContext{Question: question, Class: types.QueryGlobal}
	for _, s := range communities {
		samples := s.SampleEntities
		if len(samples) > 5 {
			samples = samples[:5]
		}
		rc.Communities = append(rc.Communities, types.CommunityContext{
			ID:             s.ID,
			Specialty:      s.Specialty,
			Theme:          s.Theme,
			Size:           s.Size,
			SampleEntities: samples,
		})
	}
	return rc
}

// FallbackAnswer renders a deterministic rule-based answer from the
// assembled context, used when no generation client is available or it
// fails.
func (a *Assembler) FallbackAnswer(rc *types.RetrievalContext) string {
	if rc.Class == types.QueryLocal {
		return localFallback(rc)
	}
	return globalFallback(rc)
}

func localFallback(rc *types.RetrievalContext) string {
	var b strings.Builder
	b.WriteString("Based on the medical knowledge graph:\n\n")
	for _, ec := range rc.Entities {
		fmt.Fprintf(&b, "**%s** (%s):\n", ec.Entity.Name, ec.Entity.Type)
		if ec.Entity.Description != "" {
			fmt.Fprintf(&b, "- Description: %s\n", ec.Entity.Description)
		}
		fmt.Fprintf(&b, "- Medical specialty: %s\n", ec.Specialty)
		if len(ec.Neighbors) > 0 {
			names := make([]string, 0, 5)
			for _, n := range ec.Neighbors {
				names = append(names, n.Entity.Name)
				if len(names) == 5 {
					break
				}
			}
			fmt.Fprintf(&b, "- Related to: %s\n", strings.Join(names, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func globalFallback(rc *types.RetrievalContext) string {
	var b strings.Builder
	b.WriteString("Based on the medical knowledge communities:\n\n")
	for _, cc := range rc.Communities {
		fmt.Fprintf(&b, "**%s** (Community %d):\n", cc.Specialty, cc.ID)
		fmt.Fprintf(&b, "- %s\n", cc.Theme)
		fmt.Fprintf(&b, "- Size: %d entities\n", cc.Size)
		if len(cc.SampleEntities) > 0 {
			fmt.Fprintf(&b, "- Key concepts: %s\n", strings.Join(cc.SampleEntities, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
