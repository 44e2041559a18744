package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

func TestForCriterion(t *testing.T) {
	for _, c := range []domain.Criterion{
		domain.CriterionNovelty,
		domain.CriterionProgress,
		domain.CriterionField,
	} {
		spec, err := ForCriterion(c)
		require.NoError(t, err)
		assert.Equal(t, c, spec.Criterion())
		assert.NotEmpty(t, spec.Queries())
	}

	_, err := ForCriterion("weirdness")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAllCoversEveryCriterion(t *testing.T) {
	specs := All()
	require.Len(t, specs, 3)
	assert.Equal(t, domain.CriterionNovelty, specs[0].Criterion())
	assert.Equal(t, domain.CriterionProgress, specs[1].Criterion())
	assert.Equal(t, domain.CriterionField, specs[2].Criterion())
}

func TestBuildPromptIncludesEvidenceAndWeights(t *testing.T) {
	spec, err := ForCriterion(domain.CriterionField)
	require.NoError(t, err)

	prompt := spec.BuildPrompt("2367", "[doc 1] evidence body", "")

	assert.Contains(t, prompt, "2367")
	assert.Contains(t, prompt, "[doc 1] evidence body")
	assert.Contains(t, prompt, "economic efficiency: 35%")
	assert.Contains(t, prompt, `"score"`)
	assert.NotContains(t, prompt, "prior art from external databases")
}

func TestBuildPromptAppendsExtraMaterial(t *testing.T) {
	spec, err := ForCriterion(domain.CriterionNovelty)
	require.NoError(t, err)

	prompt := spec.BuildPrompt("2367", "evidence", "1. Some prior patent (2019)")

	assert.Contains(t, prompt, "Related prior art from external databases")
	assert.Contains(t, prompt, "Some prior patent")
}

func TestOnlyNoveltySearchesLiterature(t *testing.T) {
	for _, spec := range All() {
		if spec.Criterion() == domain.CriterionNovelty {
			assert.NotEmpty(t, spec.LiteratureQueries())
		} else {
			assert.Empty(t, spec.LiteratureQueries())
		}
	}
}
