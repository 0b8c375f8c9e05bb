// Package llm abstracts the text-generation collaborator. The engines only
// depend on the Client interface; the OpenAI-compatible implementation lives
// alongside it, and tests substitute mocks.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the generation result.
type Response struct {
	Content string `json:"content"`
}

// Client generates text from chat messages. Implementations may fail for
// network or provider reasons; callers catch the error and fall back to
// deterministic templates.
type Client interface {
	Chat(ctx context.Context, messages []Message) (*Response, error)
}

// Config holds provider settings for a generation model.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

// ParseJSONObject extracts the first JSON object from a model response,
// repairs common formatting damage, and unmarshals it into target. Models
// routinely wrap JSON in prose or markdown fences, so the raw body is never
// trusted as-is.
func ParseJSONObject(raw string, target any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return fmt.Errorf("no JSON object in response")
	}
	body := raw[start : end+1]

	if err := json.Unmarshal([]byte(body), target); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(body)
	if err != nil {
		return fmt.Errorf("failed to repair JSON response: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), target); err != nil {
		return fmt.Errorf("failed to parse repaired JSON: %w", err)
	}
	return nil
}
