// Package medgraph answers medical questions over a knowledge graph using a
// local-to-global retrieval strategy: an offline pass partitions the graph's
// entities into characterized communities, and an online pass routes each
// question to entity-level or community-level retrieval before generating an
// answer.
package medgraph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soundprediction/medgraph/pkg/artifacts"
	"github.com/soundprediction/medgraph/pkg/cluster"
	"github.com/soundprediction/medgraph/pkg/community"
	"github.com/soundprediction/medgraph/pkg/config"
	"github.com/soundprediction/medgraph/pkg/driver"
	"github.com/soundprediction/medgraph/pkg/llm"
	"github.com/soundprediction/medgraph/pkg/logger"
	"github.com/soundprediction/medgraph/pkg/prompts"
	"github.com/soundprediction/medgraph/pkg/query"
	"github.com/soundprediction/medgraph/pkg/telemetry"
	"github.com/soundprediction/medgraph/pkg/types"
)

// Client is the main implementation of the MedGraph interface.
type Client struct {
	graph     driver.GraphDriver
	store     artifacts.Store
	llm       llm.Client
	templates *prompts.Templates
	detector  *community.Detector
	recorder  *telemetry.Recorder
	logger    *slog.Logger

	// engine is built lazily because the detection artifacts may not exist
	// yet when the client is created. A detection run invalidates it.
	mu     sync.Mutex
	engine *query.Engine
}

// New creates a client from configuration, wiring the graph driver, the
// artifact store, and the generation client.
func New(cfg *config.Config) (*Client, error) {
	log := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)

	graph, err := newGraphDriver(cfg.Database)
	if err != nil {
		return nil, err
	}

	store, err := artifacts.NewStore(artifacts.Config{
		Backend: cfg.Artifacts.Backend,
		Path:    cfg.Artifacts.Path,
	})
	if err != nil {
		return nil, err
	}

	var client llm.Client
	if model, ok := cfg.NLP.Models["default"]; ok && model.APIKey != "" {
		client, err = llm.NewOpenAIClient(llm.Config{
			Provider:    model.Provider,
			Model:       model.Model,
			APIKey:      model.APIKey,
			BaseURL:     model.BaseURL,
			Temperature: model.Temperature,
			MaxTokens:   model.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("No generation model configured, all answers will use the rule-based fallback")
	}

	var recorder *telemetry.Recorder
	if cfg.Telemetry.ParquetPath != "" {
		recorder, err = telemetry.NewRecorder(cfg.Telemetry.ParquetPath)
		if err != nil {
			return nil, err
		}
	}

	lexicon, err := loadLexicon(cfg.Detection.LexiconPath)
	if err != nil {
		return nil, err
	}

	engine := cluster.NewEngine(cluster.Config{
		CandidateCounts: cfg.Detection.CandidateCounts,
		MinAvgSize:      cfg.Detection.MinAvgSize,
		DefaultCount:    cfg.Detection.DefaultCount,
	}, log)
	templates := prompts.Default()
	detector := community.NewDetector(graph, store, engine,
		community.NewAnalyzer(lexicon),
		community.NewSummarizer(client, templates, log),
		log)

	return &Client{
		graph:     graph,
		store:     store,
		llm:       client,
		templates: templates,
		detector:  detector,
		recorder:  recorder,
		logger:    log,
	}, nil
}

// NewWithComponents creates a client from pre-built components. Tests and
// embedders use this to supply an in-memory driver, a scripted generation
// client, or a non-default clustering configuration.
func NewWithComponents(graph driver.GraphDriver, store artifacts.Store, client llm.Client, detection cluster.Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	templates := prompts.Default()
	detector := community.NewDetector(graph, store,
		cluster.NewEngine(detection, log),
		nil,
		community.NewSummarizer(client, templates, log), log)
	return &Client{
		graph:     graph,
		store:     store,
		llm:       client,
		templates: templates,
		detector:  detector,
		logger:    log,
	}
}

func newGraphDriver(cfg config.DatabaseConfig) (driver.GraphDriver, error) {
	switch cfg.Driver {
	case "", "neo4j", "memgraph":
		return driver.NewNeo4jDriver(cfg.URI, cfg.Username, cfg.Password, cfg.Database)
	case "memory":
		return driver.NewMemoryDriver(nil, nil), nil
	default:
		return nil, fmt.Errorf("unknown graph driver %q", cfg.Driver)
	}
}

func loadLexicon(path string) ([]community.Specialty, error) {
	if path == "" {
		return nil, nil
	}
	lexicon, err := community.LoadLexicon(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load specialty lexicon: %w", err)
	}
	return lexicon, nil
}

// DetectCommunities runs the offline detection pipeline and persists its
// outputs, replacing any previous run.
func (c *Client) DetectCommunities(ctx context.Context) (*types.DetectionResult, error) {
	result, err := c.detector.Run(ctx)
	if err != nil {
		return nil, err
	}

	// Force the next question to reload the fresh artifacts.
	c.mu.Lock()
	c.engine = nil
	c.mu.Unlock()

	return result, nil
}

// Answer answers one question. The detection artifacts must exist; a missing
// artifact surfaces as types.ErrMissingArtifact.
func (c *Client) Answer(ctx context.Context, question string) (*types.Answer, error) {
	engine, err := c.queryEngine(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	answer, err := engine.Answer(ctx, question)
	if err != nil {
		return nil, err
	}

	if c.recorder != nil {
		if recErr := c.recorder.Record(telemetry.QueryEvent{
			Question:   question,
			Class:      string(answer.Class),
			Success:    answer.Success,
			DurationMs: time.Since(start).Milliseconds(),
		}); recErr != nil {
			c.logger.Warn("Failed to record query event", "error", recErr)
		}
	}
	return answer, nil
}

// Communities returns the persisted community summaries in community order.
func (c *Client) Communities(ctx context.Context) ([]*types.CommunitySummary, error) {
	engine, err := c.queryEngine(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Summaries(), nil
}

// Stats returns the persisted community statistics.
func (c *Client) Stats(ctx context.Context) (*types.CommunityStats, error) {
	engine, err := c.queryEngine(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Stats(), nil
}

// Close closes all connections and cleans up resources.
func (c *Client) Close(ctx context.Context) error {
	var firstErr error
	if c.recorder != nil {
		if err := c.recorder.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.graph.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (c *Client) queryEngine(ctx context.Context) (*query.Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.engine != nil {
		return c.engine, nil
	}
	engine, err := query.NewEngine(ctx, c.graph, c.store, c.llm, c.templates, c.logger)
	if err != nil {
		return nil, err
	}
	c.engine = engine
	return engine, nil
}
