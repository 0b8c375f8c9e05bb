package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/medgraph/pkg/artifacts"
	"github.com/soundprediction/medgraph/pkg/driver"
	"github.com/soundprediction/medgraph/pkg/llm"
	"github.com/soundprediction/medgraph/pkg/prompts"
	"github.com/soundprediction/medgraph/pkg/types"
)

// noEntitiesAnswer is returned for a local question naming no known entity.
const noEntitiesAnswer = "I couldn't find specific medical entities in your question. " +
	"Please be more specific about conditions, medications, or procedures."

// Engine answers questions over the graph snapshot and the persisted
// detection artifacts. All three artifacts must be present at construction;
// a missing one is a fatal precondition failure, not a degraded mode.
type Engine struct {
	router    *Router
	resolver  *Resolver
	retriever *Retriever
	assembler *Assembler

	stats     *types.CommunityStats
	summaries []*types.CommunitySummary

	llm       llm.Client
	templates *prompts.Templates
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
}

// NewEngine loads the graph snapshot and the detection artifacts and wires
// the retrieval components. A nil generation client is allowed: every answer
// is then the rule-based fallback.
func NewEngine(ctx context.Context, graph driver.GraphDriver, store artifacts.Store, client llm.Client, templates *prompts.Templates, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if templates == nil {
		templates = prompts.Default()
	}

	entities, err := graph.FetchEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entities: %w", err)
	}
	relationships, err := graph.FetchRelationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch relationships: %w", err)
	}

	assignments, err := store.LoadAssignments()
	if err != nil {
		return nil, fmt.Errorf("query engine precondition: %w", err)
	}
	stats, err := store.LoadStats()
	if err != nil {
		return nil, fmt.Errorf("query engine precondition: %w", err)
	}
	summaries, err := store.LoadSummaries()
	if err != nil {
		return nil, fmt.Errorf("query engine precondition: %w", err)
	}

	logger.Info("Query engine ready",
		"entities", len(entities),
		"relationships", len(relationships),
		"communities", len(summaries))

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "answer-generator",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &Engine{
		router:    NewRouter(),
		resolver:  NewResolver(entities, relationships),
		retriever: NewRetriever(summaries),
		assembler: NewAssembler(assignments, summaries),
		stats:     stats,
		summaries: summaries,
		llm:       client,
		templates: templates,
		breaker:   breaker,
		logger:    logger,
	}, nil
}

// Answer routes the question, retrieves and assembles its context, and
// generates an answer. Success reports whether the text came from the
// generation collaborator; a false flag means the deterministic fallback.
func (e *Engine) Answer(ctx context.Context, question string) (*types.Answer, error) {
	class := e.router.Classify(question)
	e.logger.Info("Classified question", "class", class)

	var rc *types.RetrievalContext
	switch class {
	case types.QueryLocal:
		resolved := e.resolver.Resolve(question)
		if len(resolved) == 0 {
			return &types.Answer{Text: noEntitiesAnswer, Class: class, Success: false}, nil
		}
		rc = e.assembler.AssembleLocal(question, resolved, e.resolver)
	default:
		communities := e.retriever.Retrieve(question)
		rc = e.assembler.AssembleGlobal(question, communities)
	}

	if text, err := e.generate(ctx, rc); err == nil {
		return &types.Answer{Text: text, Class: class, Success: true}, nil
	} else if e.llm != nil {
		e.logger.Warn("Answer generation failed, using rule-based fallback", "error", err)
	}

	return &types.Answer{
		Text:    e.assembler.FallbackAnswer(rc),
		Class:   class,
		Success: false,
	}, nil
}

// Stats returns the loaded community statistics.
func (e *Engine) Stats() *types.CommunityStats {
	return e.stats
}

// Summaries returns the loaded community summaries in community order.
func (e *Engine) Summaries() []*types.CommunitySummary {
	return e.summaries
}

func (e *Engine) generate(ctx context.Context, rc *types.RetrievalContext) (string, error) {
	if e.llm == nil {
		return "", fmt.Errorf("no generation client configured")
	}
	prompt, err := e.templates.RenderAnswer(rc)
	if err != nil {
		return "", err
	}
	result, err := e.breaker.Execute(func() (interface{}, error) {
		return e.llm.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	})
	if err != nil {
		return "", err
	}
	return result.(*llm.Response).Content, nil
}
