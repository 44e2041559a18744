package criteria

import (
	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
)

// fieldSpec scores field applicability: site record, economics and
// marketability.
type fieldSpec struct{}

var fieldWeights = []weight{
	{"site application excellence", 40},
	{"economic efficiency", 35},
	{"marketability and demand", 25},
}

func (fieldSpec) Criterion() domain.Criterion { return domain.CriterionField }

func (fieldSpec) Queries() []string {
	return []string{
		"field application record and site deployments",
		"economic analysis and cost comparison",
		"market demand and commercialization prospects",
		"construction cost reduction and schedule savings",
	}
}

func (fieldSpec) SystemPrompt(store driven.PromptStore) (string, error) {
	return store.Load(driven.PromptFieldSystem)
}

func (fieldSpec) BuildPrompt(techID, evidence, extra string) string {
	return buildPrompt(domain.CriterionField, fieldWeights, techID, evidence, extra)
}

func (fieldSpec) LiteratureQueries() []string { return nil }
