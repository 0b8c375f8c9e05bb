package query

import (
	"strings"

	"github.com/soundprediction/medgraph/pkg/types"
)

// Caps on retriever output.
const (
	maxRelevantCommunities = 5
	maxFallbackCommunities = 10
)

// minMatchWordLen excludes short question words ("the", "of", "is") from the
// relevance check.
const minMatchWordLen = 3

// Retriever finds communities whose theme or specialty lexically matches a
// question.
type Retriever struct {
	summaries []*types.CommunitySummary
}

// NewRetriever creates a retriever over the persisted community summaries.
// The slice order is the insertion order fallbacks and caps follow.
func NewRetriever(summaries []*types.CommunitySummary) *Retriever {
	return &Retriever{summaries: summaries}
}

// Retrieve returns up to five communities where some question word longer
// than three characters occurs in the theme or specialty, case-insensitive.
// With no match at all it falls back to the first ten communities, so a
// broad question over a non-empty community set never comes back empty.
func (r *Retriever) Retrieve(question string) []*types.CommunitySummary {
	words := strings.Fields(strings.ToLower(question))

	var relevant []*types.CommunitySummary
	for _, s := range r.summaries {
		theme := strings.ToLower(s.Theme)
		specialty := strings.ToLower(s.Specialty)
		for _, word := range words {
			if len(word) <= minMatchWordLen {
				continue
			}
			if strings.Contains(theme, word) || strings.Contains(specialty, word) {
				relevant = append(relevant, s)
				break
			}
		}
		if len(relevant) == maxRelevantCommunities {
			break
		}
	}

	if len(relevant) == 0 {
		n := len(r.summaries)
		if n > maxFallbackCommunities {
			n = maxFallbackCommunities
		}
		relevant = append(relevant, r.summaries[:n]...)
	}
	return relevant
}
