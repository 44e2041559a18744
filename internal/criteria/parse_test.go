package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

func TestParseResponseFencedBlock(t *testing.T) {
	raw := "Here is my assessment:\n```json\n{\"score\": 4.2, \"comments\": \"solid\", \"evidence\": [{\"type\": \"originality\", \"content\": \"cited\"}]}\n```\nDone."

	j, strategy, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, StrategyFenced, strategy)
	assert.Equal(t, 4.2, j.Score)
	assert.Equal(t, "solid", j.Comments)
	require.Len(t, j.Evidence, 1)
	assert.Equal(t, "originality", j.Evidence[0].Type)
}

func TestParseResponseFencedWithoutLanguageTag(t *testing.T) {
	raw := "```\n{\"score\": 3, \"comments\": \"ok\"}\n```"

	j, strategy, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, StrategyFenced, strategy)
	assert.Equal(t, 3.0, j.Score)
}

func TestParseResponseBareObject(t *testing.T) {
	raw := "The verdict follows. {\"score\": 2.5, \"sub_scores\": {\"quality improvement\": 2}, \"comments\": \"thin evidence\"} End."

	j, strategy, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, StrategyBare, strategy)
	assert.Equal(t, 2.5, j.Score)
	assert.Equal(t, 2.0, j.SubScores["quality improvement"])
}

func TestParseResponseClampsScore(t *testing.T) {
	j, _, err := ParseResponse(`{"score": 9.5, "comments": "overenthusiastic"}`)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxCriterionScore, j.Score)

	j, _, err = ParseResponse(`{"score": -1, "comments": "harsh"}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, j.Score)
}

func TestParseResponseFailure(t *testing.T) {
	for _, raw := range []string{
		"no json here at all",
		"{broken json",
		"",
	} {
		_, _, err := ParseResponse(raw)
		assert.ErrorIs(t, err, domain.ErrUnparseableJudgment, "input: %q", raw)
	}
}

func TestParseResponseObjectOnly(t *testing.T) {
	raw := "{\"score\": 1, \"comments\": \"fallback\"}"

	j, strategy, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, StrategyBare, strategy)
	assert.Equal(t, 1.0, j.Score)
}
