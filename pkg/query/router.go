// Package query implements the online question-answering path: routing a
// question to entity-level or community-level retrieval, resolving it
// against the graph snapshot and the detection artifacts, and assembling a
// grounded context for answer generation.
package query

import (
	"strings"

	"github.com/soundprediction/medgraph/pkg/types"
)

// Lexicons for query classification. Phrases are matched as case-insensitive
// substrings of the question.
var (
	globalLexicon = []string{
		"overview", "summary", "all", "total", "overall", "general",
		"what are", "list", "types of", "categories", "compare",
		"difference between", "how many", "specialties",
	}
	localLexicon = []string{
		"what is", "define", "explain", "describe", "symptoms of",
		"treatment for", "diagnosis of", "causes of", "specific",
	}
)

// Router classifies a question as entity-specific (local) or graph-wide
// (global).
type Router struct {
	global []string
	local  []string
}

// NewRouter creates a router with the built-in lexicons.
func NewRouter() *Router {
	return &Router{global: globalLexicon, local: localLexicon}
}

// Classify scores the question against both lexicons. A question is local
// only when its local score strictly beats its global score; everything
// else, including ties and zero hits, is global.
func (r *Router) Classify(question string) types.QueryClass {
	q := strings.ToLower(question)
	globalScore := score(q, r.global)
	localScore := score(q, r.local)
	if localScore > globalScore {
		return types.QueryLocal
	}
	return types.QueryGlobal
}

func score(question string, lexicon []string) int {
	n := 0
	for _, phrase := range lexicon {
		if strings.Contains(question, phrase) {
			n++
		}
	}
	return n
}
