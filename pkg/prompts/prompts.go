// Package prompts holds the prompt templates handed to the text-generation
// collaborator. Templates are injectable values rather than package globals
// so tests and deployments can substitute their own wording.
package prompts

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/soundprediction/medgraph/pkg/types"
)

// Templates bundles the three prompt templates the system uses.
type Templates struct {
	localAnswer      *template.Template
	globalAnswer     *template.Template
	communitySummary *template.Template
}

const defaultLocalAnswer = `You are a medical expert. Answer the following question using the provided medical entity information.

Question: {{.Question}}

Medical Entity Information:

{{range $i, $e := .Entities -}}
Entity {{inc $i}}: {{$e.Entity.Name}} ({{$e.Entity.Type}})
Description: {{$e.Entity.Description}}
Medical Specialty: {{$e.Specialty}}
{{- if $e.Neighbors}}
Related entities:
{{- range $n := first 5 $e.Neighbors}}
  - {{$n.Entity.Name}} ({{$n.Entity.Type}}) via {{$n.Relationship}}
{{- end}}
{{- end}}

{{end -}}

Provide a comprehensive, medically accurate answer based on the entity relationships and context provided.
Focus on clinical relevance and practical implications.`

const defaultGlobalAnswer = `You are a medical expert. Answer the following question using the provided medical community information.

Question: {{.Question}}

Medical Community Information:

{{range $c := .Communities -}}
Community {{$c.ID}} ({{$c.Specialty}}):
Size: {{$c.Size}} entities
Theme: {{$c.Theme}}
Key entities: {{join (first5s $c.SampleEntities) ", "}}

{{end -}}

Provide a comprehensive answer that synthesizes information across medical specialties.
Focus on providing a broad medical perspective and clinical insights.`

const defaultCommunitySummary = `You are a medical expert analyzing a community of related medical entities. Please provide a comprehensive summary of this medical community.

Community Information:
- ID: {{.ID}}
- Medical Specialty: {{.Specialty}}
- Theme: {{.Theme}}
- Size: {{.Size}} entities

Entities in this community:
{{.EntityRoster}}

Please provide:
1. A concise title for this community (max 10 words)
2. A detailed summary (2-3 paragraphs) explaining:
   - What this community represents in medical terms
   - Key medical concepts and relationships
   - Clinical significance and relevance
   - How these entities work together in medical practice

Format your response as JSON:
{
    "title": "Community title here",
    "summary": "Detailed summary here"
}`

var funcs = template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"join": strings.Join,
	"first": func(n int, ns []types.Neighbor) []types.Neighbor {
		if len(ns) > n {
			return ns[:n]
		}
		return ns
	},
	"first5s": func(ss []string) []string {
		if len(ss) > 5 {
			return ss[:5]
		}
		return ss
	},
}

// Default returns the built-in templates.
func Default() *Templates {
	t, err := Parse(defaultLocalAnswer, defaultGlobalAnswer, defaultCommunitySummary)
	if err != nil {
		panic(fmt.Sprintf("prompts: default templates failed to parse: %v", err))
	}
	return t
}

// Parse builds Templates from raw template text, validating all three.
func Parse(local, global, summary string) (*Templates, error) {
	lt, err := template.New("local").Funcs(funcs).Parse(local)
	if err != nil {
		return nil, fmt.Errorf("local answer template: %w", err)
	}
	gt, err := template.New("global").Funcs(funcs).Parse(global)
	if err != nil {
		return nil, fmt.Errorf("global answer template: %w", err)
	}
	st, err := template.New("summary").Funcs(funcs).Parse(summary)
	if err != nil {
		return nil, fmt.Errorf("community summary template: %w", err)
	}
	return &Templates{localAnswer: lt, globalAnswer: gt, communitySummary: st}, nil
}

// RenderAnswer renders the generation prompt for an assembled retrieval
// context, picking the local or global template by the context's class.
func (t *Templates) RenderAnswer(rc *types.RetrievalContext) (string, error) {
	var b strings.Builder
	var err error
	if rc.Class == types.QueryLocal {
		err = t.localAnswer.Execute(&b, rc)
	} else {
		err = t.globalAnswer.Execute(&b, rc)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render answer prompt: %w", err)
	}
	return b.String(), nil
}

// SummaryInput is the data fed to the community-summary template.
type SummaryInput struct {
	ID           int
	Specialty    string
	Theme        string
	Size         int
	EntityRoster string
}

// RenderCommunitySummary renders the summarization prompt for one community.
func (t *Templates) RenderCommunitySummary(in SummaryInput) (string, error) {
	var b strings.Builder
	if err := t.communitySummary.Execute(&b, in); err != nil {
		return "", fmt.Errorf("failed to render summary prompt: %w", err)
	}
	return b.String(), nil
}
