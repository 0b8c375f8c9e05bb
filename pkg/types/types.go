package types

import (
	"errors"
	"fmt"
)

// EntityType classifies a medical entity.
type EntityType string

const (
	ConditionType  EntityType = "CONDITION"
	MedicationType EntityType = "MEDICATION"
	LabValueType   EntityType = "LAB_VALUE"
	ProcedureType  EntityType = "PROCEDURE"
	AnatomyType    EntityType = "ANATOMY"
	UnknownType    EntityType = "UNKNOWN"
)

// ParseEntityType maps a raw type label to an EntityType, defaulting to
// UnknownType for anything outside the fixed vocabulary.
func ParseEntityType(s string) EntityType {
	switch EntityType(s) {
	case ConditionType, MedicationType, LabValueType, ProcedureType, AnatomyType:
		return EntityType(s)
	default:
		return UnknownType
	}
}

// Entity is a node in the medical knowledge graph. Name is the globally
// unique key; Description may be empty. Entities are created by the upstream
// extraction collaborator and are read-only here.
type Entity struct {
	Name        string     `json:"name"`
	Type        EntityType `json:"type"`
	Description string     `json:"description,omitempty"`
}

// Validate checks the entity's invariants.
func (e *Entity) Validate() error {
	if e.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Relationship is a typed edge between two entities, identified by name.
// Type is an open string label (TREATED_BY, SHOWS, ...). Strength defaults
// to 1.0 when the store carries no value.
type Relationship struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Type        string  `json:"relationship"`
	Strength    float64 `json:"strength"`
	Description string  `json:"description,omitempty"`
}

// Touches reports whether the relationship has the named entity as either
// endpoint.
func (r *Relationship) Touches(name string) bool {
	return r.Source == name || r.Target == name
}

// Other returns the opposite endpoint of the relationship relative to name.
func (r *Relationship) Other(name string) string {
	if r.Source == name {
		return r.Target
	}
	return r.Source
}

// Community is one partition cell of the entity set together with its
// computed characteristics.
type Community struct {
	ID      int      `json:"id"`
	Members []string `json:"entities"`
	Size    int      `json:"size"`

	// DominantType is the most frequent member entity type, ties broken
	// by first-seen order in the canonical entity ordering.
	DominantType EntityType `json:"type"`

	Specialty string `json:"specialty"`
	Theme     string `json:"theme"`

	// Density is the number of distinct internal relationship types over
	// the number of possible member pairs. It measures relation-type
	// diversity, not edge density.
	// TODO: revisit whether downstream consumers want true edge density;
	// the formula is kept as-is because persisted stats depend on it.
	Density float64 `json:"density"`

	TypeDistribution      *Counter `json:"type_distribution"`
	InternalRelationships *Counter `json:"internal_relationships"`
	ExternalRelationships *Counter `json:"external_relationships"`
}

// Partition is the result of one clustering run: a dense labeling of the
// canonical entity order into k communities. It is rebuilt wholesale on each
// detection run and never mutated afterwards.
type Partition struct {
	K       int        `json:"k"`
	Quality float64    `json:"quality"`
	Order   []string   `json:"order"`
	Labels  []int      `json:"labels"`
	Members [][]string `json:"members"`
}

/// Validate checks the partition property: every entity carries exactly one
// label and member sets are pairwise disjoint and cover the entity set.
func (p *Partition) Validate() error {
	if len(p.Labels) != len(p.Order) {
		return fmt.Errorf("partition: %d labels for %d entities", len(p.Labels), len(p.Order))
	}
	seen := make(map[string]int, len(p.Order))
	for id, members := range p.Members {
		for _, name := range members {
			if prev, dup := seen[name]; dup {
				return fmt.Errorf("partition: %q in communities %d and %d", name, prev, id)
			}
			seen[name] = id
		}
	}
	for i, name := range p.Order {
		id, ok := seen[name]
		if !ok {
			return fmt.Errorf("partition: %q has no community", name)
		}
		if id != p.Labels[i] {
			return fmt.Errorf("partition: %q labeled %d but member of %d", name, p.Labels[i], id)
		}
	}
	return nil
}

// QueryClass is the routing decision for a question.
type QueryClass string

const (
	QueryLocal  QueryClass = "local"
	QueryGlobal QueryClass = "global"
)

// Neighbor is an entity adjacent to a resolved entity, with the relationship
// that connects them.
type Neighbor struct {
	Entity       Entity `json:"entity"`
	Relationship string `json:"relationship"`
	Description  string `json:"description,omitempty"`
}

// EntityContext is the per-entity record assembled for a local query.
type EntityContext struct {
	Entity      Entity     `json:"entity"`
	Neighbors   []Neighbor `json:"neighbors"`
	Specialty   string     `json:"specialty"`
	CommunityID int        `json:"community_id"`
}

// CommunityContext is the per-community record assembled for a global query.
type CommunityContext struct {
	ID             int      `json:"id"`
	Specialty      string   `json:"specialty"`
	Theme          string   `json:"theme"`
	Size           int      `json:"size"`
	SampleEntities []string `json:"sample_entities"`
}

// RetrievalContext is the grounded context handed to the text-generation
// collaborator. Exactly one of Entities or Communities is populated,
// depending on Class. It is produced per question and consumed once.
type RetrievalContext struct {
	Question    string             `json:"question"`
	Class       QueryClass         `json:"class"`
	Entities    []EntityContext    `json:"entities,omitempty"`
	Communities []CommunityContext `json:"communities,omitempty"`
}

// Answer is the final response to a question. Success is true when the text
// came from the generation collaborator and false when the deterministic
// rule-based template was used instead.
type Answer struct {
	Text    string     `json:"text"`
	Class   QueryClass `json:"class"`
	Success bool       `json:"success"`
}

// CommunitySummary is the persisted per-community summary record consumed by
// the query phase.
type CommunitySummary struct {
	ID               int            `json:"id"`
	Specialty        string         `json:"specialty"`
	Theme            string         `json:"theme"`
	Size             int            `json:"size"`
	Type             EntityType     `json:"type"`
	TypeDistribution map[string]int `json:"type_distribution"`
	SampleEntities   []string       `json:"sample_entities"`

	// Title and Summary are produced by the generation collaborator, or by
	// the fallback template when generation fails (Success false).
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Success bool   `json:"success"`
}

// CommunityStats is the persisted community-statistics document.
type CommunityStats struct {
	QualityScore     float64               `json:"silhouette_score"`
	TotalCommunities int                   `json:"total_communities"`
	Communities      map[string]*Community `json:"communities"`
}

// DetectionResult reports one offline detection run.
type DetectionResult struct {
	Partition            *Partition          `json:"partition"`
	Communities          []*Community        `json:"communities"`
	Summaries            []*CommunitySummary `json:"summaries"`
	SkippedRelationships int                 `json:"skipped_relationships"`
}

// Sentinel errors shared across packages.
var (
	// ErrEmptyName is returned for an entity without a name.
	ErrEmptyName = errors.New("entity name is empty")
	// ErrNoEntities is returned when the graph snapshot holds no entities.
	ErrNoEntities = errors.New("no entities in graph snapshot")
	// ErrEmptyCorpus is returned when feature synthesis yields no vocabulary.
	ErrEmptyCorpus = errors.New("feature synthesis produced an empty vocabulary")
	// ErrMissingArtifact is returned when a persisted artifact required by
	// the query phase is absent. Callers wrap it with the artifact name.
	ErrMissingArtifact = errors.New("required artifact missing")
	// ErrNoViablePartition is returned when no candidate community count can
	// produce a valid partition.
	ErrNoViablePartition = errors.New("no viable community partition")
)
