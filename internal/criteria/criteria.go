// Package criteria defines the three certification review criteria:
// their retrieval queries, judge prompts and sub-aspect weights.
package criteria

import (
	"fmt"
	"strings"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
)

// Spec describes how one criterion is evaluated: what evidence to
// retrieve, which judge prompt to use and how to build the user prompt.
type Spec interface {
	// Criterion names the dimension this spec scores.
	Criterion() domain.Criterion

	// Queries returns the retrieval queries used to gather evidence.
	Queries() []string

	// SystemPrompt loads this criterion's judge system prompt.
	SystemPrompt(store driven.PromptStore) (string, error)

	// BuildPrompt renders the user prompt from the assembled evidence.
	// The extra argument carries optional supplementary material such
	// as a prior-art digest; pass "" when there is none.
	BuildPrompt(techID, evidence, extra string) string

	// LiteratureQueries returns external prior-art search queries, or
	// nil when the criterion does not use literature.
	LiteratureQueries() []string
}

// ForCriterion returns the spec for a criterion.
func ForCriterion(c domain.Criterion) (Spec, error) {
	switch c {
	case domain.CriterionNovelty:
		return noveltySpec{}, nil
	case domain.CriterionProgress:
		return progressSpec{}, nil
	case domain.CriterionField:
		return fieldSpec{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown criterion %q", domain.ErrInvalidInput, c)
	}
}

// All returns every spec in stage order.
func All() []Spec {
	return []Spec{noveltySpec{}, progressSpec{}, fieldSpec{}}
}

// weight is one named sub-aspect with its share of the criterion score.
type weight struct {
	name    string
	percent int
}

// responseSchema is the JSON shape every judge must answer with. The
// weights line is rendered per criterion.
const responseSchema = `Respond with a single JSON object, no prose outside it:
{
  "score": <number 0-5, weighted across the sub-aspects>,
  "sub_scores": {<sub-aspect name>: <number 0-5>, ...},
  "evidence": [
    {"type": <sub-aspect name>, "content": <cited passage>, "location": <document/page reference>, "quantitative_data": <numeric claim or "">}
  ],
  "comments": <overall assessment with concrete improvement points>
}`

// buildPrompt renders the shared user-prompt layout.
func buildPrompt(criterion domain.Criterion, weights []weight, techID, evidence, extra string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Evaluate the %s of technology submission %s.\n\n", criterion, techID)

	b.WriteString("Weigh the sub-aspects as follows:\n")
	for _, w := range weights {
		fmt.Fprintf(&b, "- %s: %d%%\n", w.name, w.percent)
	}

	b.WriteString("\n## Submission evidence\n")
	b.WriteString(evidence)
	b.WriteString("\n")

	if extra != "" {
		b.WriteString("\n## Related prior art from external databases\n")
		b.WriteString(extra)
		b.WriteString("\n")
	}

	b.WriteString("\nBase every claim on the evidence above and cite the doc numbers.\n\n")
	b.WriteString(responseSchema)

	return b.String()
}
