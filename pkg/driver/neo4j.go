package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/soundprediction/medgraph/pkg/types"
)

// Neo4jDriver implements the GraphDriver interface for Neo4j databases.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jDriver creates a new Neo4j driver instance.
func NewNeo4jDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jDriver{
		client:   client,
		database: database,
	}, nil
}

// FetchEntities returns every Entity node. The query's return order is the
// canonical entity order for the run.
func (n *Neo4jDriver) FetchEntities(ctx context.Context) ([]types.Entity, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (e:Entity)
			RETURN e.name AS name, e.type AS type, e.description AS description
		`
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}

		var entities []types.Entity
		for res.Next(ctx) {
			record := res.Record()
			e := types.Entity{
				Name:        stringValue(record, "name"),
				Type:        types.ParseEntityType(stringValue(record, "type")),
				Description: stringValue(record, "description"),
			}
			if e.Name == "" {
				continue
			}
			entities = append(entities, e)
		}
		return entities, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entities: %w", err)
	}

	return result.([]types.Entity), nil
}

// FetchRelationships returns every relationship between Entity nodes.
// Relationships without a stored strength default to 1.0.
func (n *Neo4jDriver) FetchRelationships(ctx context.Context) ([]types.Relationship, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (a:Entity)-[r]->(b:Entity)
			RETURN a.name AS source, b.name AS target, type(r) AS relationship,
			       r.strength AS strength, r.description AS description
		`
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}

		var relationships []types.Relationship
		for res.Next(ctx) {
			record := res.Record()
			rel := types.Relationship{
				Source:      stringValue(record, "source"),
				Target:      stringValue(record, "target"),
				Type:        stringValue(record, "relationship"),
				Strength:    floatValue(record, "strength", 1.0),
				Description: stringValue(record, "description"),
			}
			if rel.Source == "" || rel.Target == "" {
				continue
			}
			relationships = append(relationships, rel)
		}
		return relationships, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch relationships: %w", err)
	}

	return result.([]types.Relationship), nil
}

// ClearCommunities removes all Community nodes and their membership edges.
func (n *Neo4jDriver) ClearCommunities(ctx context.Context) error {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (c:Community)
			DETACH DELETE c
		`
		_, err := tx.Run(ctx, query, nil)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to clear communities: %w", err)
	}
	return nil
}

// PersistCommunities writes one Community node per community plus a
// BELONGS_TO edge from each member entity.
func (n *Neo4jDriver) PersistCommunities(ctx context.Context, communities []*types.Community) error {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, c := range communities {
			_, err := tx.Run(ctx, `
				CREATE (c:Community {
					id: $id,
					specialty: $specialty,
					theme: $theme,
					size: $size,
					dominant_type: $dominant_type,
					density: $density
				})
			`, map[string]any{
				"id":            c.ID,
				"specialty":     c.Specialty,
				"theme":         c.Theme,
				"size":          c.Size,
				"dominant_type": string(c.DominantType),
				"density":       c.Density,
			})
			if err != nil {
				return nil, err
			}

			_, err = tx.Run(ctx, `
				MATCH (c:Community {id: $id})
				UNWIND $members AS member
				MATCH (e:Entity {name: member})
				CREATE (e)-[:BELONGS_TO]->(c)
			`, map[string]any{
				"id":      c.ID,
				"members": c.Members,
			})
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist communities: %w", err)
	}
	return nil
}

// PersistSummaries attaches generated titles and summaries to existing
// Community nodes.
func (n *Neo4jDriver) PersistSummaries(ctx context.Context, summaries []*types.CommunitySummary) error {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, s := range summaries {
			_, err := tx.Run(ctx, `
				MATCH (c:Community {id: $id})
				SET c.title = $title,
				    c.summary = $summary,
				    c.summary_generated = $generated
			`, map[string]any{
				"id":        s.ID,
				"title":     s.Title,
				"summary":   s.Summary,
				"generated": s.Success,
			})
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist summaries: %w", err)
	}
	return nil
}

// Provider reports the backend type.
func (n *Neo4jDriver) Provider() GraphProvider {
	return GraphProviderNeo4j
}

// Close releases the underlying connection.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

func stringValue(record *neo4j.Record, key string) string {
	value, found := record.Get(key)
	if !found || value == nil {
		return ""
	}
	s, _ := value.(string)
	return s
}

func floatValue(record *neo4j.Record, key string, fallback float64) float64 {
	value, found := record.Get(key)
	if !found || value == nil {
		return fallback
	}
	switch v := value.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return fallback
	}
}
