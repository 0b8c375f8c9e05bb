// Package features turns a graph snapshot into the dense feature matrix
// consumed by the clustering engine. Each entity becomes one row in the
// canonical first-seen order: a tf-idf weighted bag-of-terms block over the
// entity's name, type and description, followed by one column per distinct
// relationship type counting undirected incidence.
package features

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/soundprediction/medgraph/pkg/types"
)

// Defaults matching the detection pipeline's vectorizer settings.
const (
	DefaultMaxFeatures = 1000
	DefaultMaxDocFreq  = 0.95
	DefaultMinDocCount = 1
)

var termPattern = regexp.MustCompile(`\w\w+`)

// Config controls the lexical block of the synthesizer.
type Config struct {
	// MaxFeatures caps the vocabulary, keeping the most frequent terms.
	MaxFeatures int
	// MaxDocFreq drops terms occurring in more than this fraction of
	// documents.
	MaxDocFreq float64
	// MinDocCount drops terms occurring in fewer documents than this.
	MinDocCount int
}

// NewConfig returns the default synthesizer configuration.
func NewConfig() Config {
	return Config{
		MaxFeatures: DefaultMaxFeatures,
		MaxDocFreq:  DefaultMaxDocFreq,
		MinDocCount: DefaultMinDocCount,
	}
}

// Matrix is the synthesized feature matrix. Rows align with Order, the
// canonical first-seen entity ordering every downstream tie-break depends
// on. Columns are Terms followed by RelTypes.
type Matrix struct {
	Rows  [][]float64
	Order []string

	Terms    []string
	RelTypes []string

	// SkippedRelationships counts relationships dropped because an
	// endpoint named no known entity. Diagnostic only, never fatal.
	SkippedRelationships int
}

// Dims returns the matrix shape.
func (m *Matrix) Dims() (rows, cols int) {
	if len(m.Rows) == 0 {
		return 0, 0
	}
	return len(m.Rows), len(m.Rows[0])
}

// Synthesize builds the feature matrix for the snapshot. Entity order is
// preserved as given. An empty entity set or an empty resulting vocabulary
// is fatal: there is no meaningful partition without lexical features.
func Synthesize(entities []types.Entity, relationships []types.Relationship, cfg Config) (*Matrix, error) {
	if len(entities) == 0 {
		return nil, types.ErrNoEntities
	}
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = DefaultMaxFeatures
	}
	if cfg.MaxDocFreq <= 0 {
		cfg.MaxDocFreq = DefaultMaxDocFreq
	}
	if cfg.MinDocCount <= 0 {
		cfg.MinDocCount = DefaultMinDocCount
	}

	order := make([]string, len(entities))
	docs := make([][]string, len(entities))
	for i, e := range entities {
		order[i] = e.Name
		text := fmt.Sprintf("%s %s %s", e.Name, e.Type, e.Description)
		docs[i] = ngrams(tokenize(text))
	}

	terms, vocab, err := buildVocabulary(docs, cfg)
	if err != nil {
		return nil, err
	}

	lexical := tfidf(docs, terms, vocab)

	relTypes, incidence, skipped := relationshipIncidence(order, relationships)

	rows := make([][]float64, len(entities))
	for i := range rows {
		row := make([]float64, 0, len(terms)+len(relTypes))
		row = append(row, lexical[i]...)
		row = append(row, incidence[i]...)
		rows[i] = row
	}

	return &Matrix{
		Rows:                 rows,
		Order:                order,
		Terms:                terms,
		RelTypes:             relTypes,
		SkippedRelationships: skipped,
	}, nil
}

// tokenize lower-cases the text, extracts word tokens of two or more
// characters, and removes English stop-words.
func tokenize(text string) []string {
	raw := termPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if !isStopWord(tok) {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// ngrams expands a token sequence into unigrams plus adjacent bigrams.
func ngrams(tokens []string) []string {
	out := make([]string, 0, 2*len(tokens))
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// buildVocabulary applies the document-frequency bounds and the feature cap,
// then fixes the column order alphabetically so identical corpora always
// produce identical matrices.
func buildVocabulary(docs [][]string, cfg Config) ([]string, map[string]int, error) {
	docFreq := make(map[string]int)
	termFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			termFreq[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	maxDocs := int(cfg.MaxDocFreq * float64(len(docs)))
	if maxDocs < 1 {
		maxDocs = 1
	}

	kept := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < cfg.MinDocCount || df > maxDocs {
			continue
		}
		kept = append(kept, term)
	}
	if len(kept) == 0 {
		return nil, nil, types.ErrEmptyCorpus
	}

	// Cap by corpus frequency, ties resolved alphabetically.
	sort.Slice(kept, func(i, j int) bool {
		if termFreq[kept[i]] != termFreq[kept[j]] {
			return termFreq[kept[i]] > termFreq[kept[j]]
		}
		return kept[i] < kept[j]
	})
	if len(kept) > cfg.MaxFeatures {
		kept = kept[:cfg.MaxFeatures]
	}
	sort.Strings(kept)

	vocab := make(map[string]int, len(kept))
	for i, term := range kept {
		vocab[term] = i
	}
	return kept, vocab, nil
}

// tfidf computes smoothed tf-idf rows, each L2-normalized. The lexical block
// is normalized on its own; incidence counts are appended raw.
func tfidf(docs [][]string, terms []string, vocab map[string]int) [][]float64 {
	n := float64(len(docs))

	docFreq := make([]int, len(terms))
	counts := make([][]float64, len(docs))
	for i, doc := range docs {
		row := make([]float64, len(terms))
		for _, term := range doc {
			if j, ok := vocab[term]; ok {
				row[j]++
			}
		}
		for j, c := range row {
			if c > 0 {
				docFreq[j]++
			}
		}
		counts[i] = row
	}

	idf := make([]float64, len(terms))
	for j, df := range docFreq {
		idf[j] = math.Log((1+n)/(1+float64(df))) + 1
	}

	for _, row := range counts {
		var norm float64
		for j := range row {
			row[j] *= idf[j]
			norm += row[j] * row[j]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
	}
	return counts
}

// relationshipIncidence builds one column per distinct relationship type in
// first-observed order. Each relationship increments both endpoint rows;
// relationships naming an unknown endpoint are skipped and counted.
func relationshipIncidence(order []string, relationships []types.Relationship) ([]string, [][]float64, int) {
	index := make(map[string]int, len(order))
	for i, name := range order {
		index[name] = i
	}

	var relTypes []string
	typeCol := make(map[string]int)
	skipped := 0

	kept := make([]types.Relationship, 0, len(relationships))
	for _, rel := range relationships {
		if _, ok := index[rel.Source]; !ok {
			skipped++
			continue
		}
		if _, ok := index[rel.Target]; !ok {
			skipped++
			continue
		}
		if _, ok := typeCol[rel.Type]; !ok {
			typeCol[rel.Type] = len(relTypes)
			relTypes = append(relTypes, rel.Type)
		}
		kept = append(kept, rel)
	}

	incidence := make([][]float64, len(order))
	for i := range incidence {
		incidence[i] = make([]float64, len(relTypes))
	}
	for _, rel := range kept {
		col := typeCol[rel.Type]
		incidence[index[rel.Source]][col]++
		incidence[index[rel.Target]][col]++
	}
	return relTypes, incidence, skipped
}
