package query

import (
	"strings"

	"github.com/soundprediction/medgraph/pkg/types"
)

// Caps on resolver output.
const (
	maxResolvedEntities = 5
	maxNeighbors        = 10
)

// Resolver finds entities named in a question and their immediate graph
// neighborhood.
type Resolver struct {
	entities      []types.Entity
	relationships []types.Relationship
	byName        map[string]types.Entity
}

// NewResolver creates a resolver over the graph snapshot. The entity slice
// order is the roster order resolved matches come back in.
func NewResolver(entities []types.Entity, relationships []types.Relationship) *Resolver {
	byName := make(map[string]types.Entity, len(entities))
	for _, e := range entities {
		byName[e.Name] = e
	}
	return &Resolver{
		entities:      entities,
		relationships: relationships,
		byName:        byName,
	}
}

// Resolve returns up to five entities whose names occur as case-insensitive
// substrings of the question, in roster order.
func (r *Resolver) Resolve(question string) []types.Entity {
	q := strings.ToLower(question)
	var found []types.Entity
	for _, e := range r.entities {
		if strings.Contains(q, strings.ToLower(e.Name)) {
			found = append(found, e)
			if len(found) == maxResolvedEntities {
				break
			}
		}
	}
	return found
}

// Neighbors returns up to ten entities adjacent to the named entity, in
// relationship order, with the connecting relationship type. Endpoints not
// present in the snapshot are skipped.
func (r *Resolver) Neighbors(name string) []types.Neighbor {
	var neighbors []types.Neighbor
	for i := range r.relationships {
		rel := &r.relationships[i]
		if !rel.Touches(name) {
			continue
		}
		entity, known := r.byName[rel.Other(name)]
		if !known {
			continue
		}
		neighbors = append(neighbors, types.Neighbor{
			Entity:       entity,
			Relationship: rel.Type,
			Description:  rel.Description,
		})
		if len(neighbors) == maxNeighbors {
			break
		}
	}
	return neighbors
}
