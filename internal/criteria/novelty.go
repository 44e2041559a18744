package criteria

import (
	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
)

// noveltySpec scores differentiation from prior art and originality.
type noveltySpec struct{}

var noveltyWeights = []weight{
	{"differentiation from existing technology", 60},
	{"originality of the core idea", 40},
}

func (noveltySpec) Criterion() domain.Criterion { return domain.CriterionNovelty }

func (noveltySpec) Queries() []string {
	return []string{
		"differences from existing technology and prior art",
		"original features and core technical idea",
		"comparative analysis with conventional methods",
		"problems of existing technology this work solves",
	}
}

func (noveltySpec) SystemPrompt(store driven.PromptStore) (string, error) {
	return store.Load(driven.PromptNoveltySystem)
}

func (noveltySpec) BuildPrompt(techID, evidence, extra string) string {
	return buildPrompt(domain.CriterionNovelty, noveltyWeights, techID, evidence, extra)
}

// LiteratureQueries feed the external prior-art search whose digest is
// appended to the novelty prompt.
func (noveltySpec) LiteratureQueries() []string {
	return []string{
		"prior art and patents for the submitted construction technology",
		"existing research on the same engineering method",
	}
}
