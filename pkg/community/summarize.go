package community

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/medgraph/pkg/llm"
	"github.com/soundprediction/medgraph/pkg/prompts"
	"github.com/soundprediction/medgraph/pkg/types"
)

// rosterLimit caps how many member entities are listed in the summary
// prompt.
const rosterLimit = 20

// Summarizer produces the persisted per-community summary records. Each
// record carries a generated title and summary when the generation
// collaborator succeeds, or a deterministic fallback with Success=false when
// it does not. A circuit breaker stops hammering a failing provider and
// short-circuits straight to the fallback.
type Summarizer struct {
	llm       llm.Client
	templates *prompts.Templates
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
}

// NewSummarizer creates a summarizer. A nil client is allowed: every
// community then receives the fallback summary.
func NewSummarizer(client llm.Client, templates *prompts.Templates, logger *slog.Logger) *Summarizer {
	if templates == nil {
		templates = prompts.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "community-summarizer",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Summarizer{llm: client, templates: templates, breaker: breaker, logger: logger}
}

// SummarizeAll builds a summary record for every community, in community
// order. The entity slice supplies member types and descriptions for the
// prompt roster.
func (s *Summarizer) SummarizeAll(ctx context.Context, communities []*types.Community, entities []types.Entity) []*types.CommunitySummary {
	byName := make(map[string]types.Entity, len(entities))
	for _, e := range entities {
		byName[e.Name] = e
	}
	summaries := make([]*types.CommunitySummary, 0, len(communities))
	for _, c := range communities {
		summaries = append(summaries, s.Summarize(ctx, c, byName))
	}
	return summaries
}

// Summarize builds the summary record for one community.
func (s *Summarizer) Summarize(ctx context.Context, c *types.Community, byName map[string]types.Entity) *types.CommunitySummary {
	summary := &types.CommunitySummary{
		ID:               c.ID,
		Specialty:        c.Specialty,
		Theme:            c.Theme,
		Size:             c.Size,
		Type:             c.DominantType,
		TypeDistribution: c.TypeDistribution.ToMap(),
		SampleEntities:   sample(c.Members, 5),
	}

	title, text, err := s.generate(ctx, c, byName)
	if err != nil {
		s.logger.Warn("Community summarization failed, using fallback",
			"community_id", c.ID, "error", err)
		summary.Title = fallbackTitle(c)
		summary.Summary = fallbackSummary(c)
		summary.Success = false
		return summary
	}

	summary.Title = title
	summary.Summary = text
	summary.Success = true
	return summary
}

func (s *Summarizer) generate(ctx context.Context, c *types.Community, byName map[string]types.Entity) (string, string, error) {
	if s.llm == nil {
		return "", "", fmt.Errorf("no generation client configured")
	}

	prompt, err := s.templates.RenderCommunitySummary(prompts.SummaryInput{
		ID:           c.ID,
		Specialty:    c.Specialty,
		Theme:        c.Theme,
		Size:         c.Size,
		EntityRoster: roster(c, byName),
	})
	if err != nil {
		return "", "", err
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.llm.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	})
	if err != nil {
		return "", "", err
	}
	content := result.(*llm.Response).Content

	var parsed struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
	}
	if err := llm.ParseJSONObject(content, &parsed); err != nil {
		// The model answered but not in JSON; keep the prose as the
		// summary rather than discarding a successful generation.
		return fallbackTitle(c), content, nil
	}
	if parsed.Title == "" {
		parsed.Title = fallbackTitle(c)
	}
	if parsed.Summary == "" {
		parsed.Summary = "Summary not available"
	}
	return parsed.Title, parsed.Summary, nil
}

// roster lists the first 20 members with type and description for the
// summary prompt.
func roster(c *types.Community, byName map[string]types.Entity) string {
	var b strings.Builder
	for i, name := range c.Members {
		if i == rosterLimit {
			fmt.Fprintf(&b, "... and %d more entities", len(c.Members)-rosterLimit)
			break
		}
		e := byName[name]
		desc := e.Description
		if desc == "" {
			desc = "No description"
		}
		typ := e.Type
		if typ == "" {
			typ = types.UnknownType
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", name, typ, desc)
	}
	return b.String()
}

func fallbackTitle(c *types.Community) string {
	return fmt.Sprintf("Medical Community %d - %s", c.ID, c.Specialty)
}

func fallbackSummary(c *types.Community) string {
	return fmt.Sprintf("This community contains %d medical entities related to %s. Theme: %s",
		c.Size, c.Specialty, c.Theme)
}

func sample(names []string, n int) []string {
	if len(names) > n {
		names = names[:n]
	}
	return append([]string(nil), names...)
}
