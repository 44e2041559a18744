package criteria

import (
	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
)

// progressSpec scores the degree of advancement over existing
// technology.
type progressSpec struct{}

var progressWeights = []weight{
	{"quality improvement", 30},
	{"performance and safety verification", 35},
	{"constructability improvement", 20},
	{"maintenance advantage", 15},
}

func (progressSpec) Criterion() domain.Criterion { return domain.CriterionProgress }

func (progressSpec) Queries() []string {
	return []string{
		"quality improvement over existing methods",
		"performance test results and verification data",
		"safety management and structural safety",
		"construction method improvement and workability",
		"maintenance and durability advantages",
	}
}

func (progressSpec) SystemPrompt(store driven.PromptStore) (string, error) {
	return store.Load(driven.PromptProgressSystem)
}

func (progressSpec) BuildPrompt(techID, evidence, extra string) string {
	return buildPrompt(domain.CriterionProgress, progressWeights, techID, evidence, extra)
}

func (progressSpec) LiteratureQueries() []string { return nil }
