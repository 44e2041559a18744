package criteria

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

// Judgment is the parsed payload of a judge response.
type Judgment struct {
	// Score is the weighted 0-5 score the judge assigned.
	Score float64 `json:"score"`

	// SubScores holds the per-sub-aspect scores, may be empty.
	SubScores map[string]float64 `json:"sub_scores"`

	// Evidence lists the citations backing the score.
	Evidence []domain.Evidence `json:"evidence"`

	// Comments is the judge's free-text assessment.
	Comments string `json:"comments"`
}

// Parse strategies, reported for logging.
const (
	// StrategyFenced extracted a ```json fenced block.
	StrategyFenced = "fenced"

	// StrategyBare extracted the outermost bare JSON object.
	StrategyBare = "bare"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParseResponse extracts the judgment JSON from a raw model response.
// It tries a fenced code block first, then the outermost bare object.
// The returned strategy names which one succeeded. Failure wraps
// ErrUnparseableJudgment; callers degrade to a zero-score result.
func ParseResponse(raw string) (Judgment, string, error) {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		if j, err := decode(m[1]); err == nil {
			return j, StrategyFenced, nil
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if j, err := decode(raw[start : end+1]); err == nil {
			return j, StrategyBare, nil
		}
	}

	return Judgment{}, "", fmt.Errorf("%w: no JSON object found in response", domain.ErrUnparseableJudgment)
}

// decode unmarshals and sanity-checks one candidate object.
func decode(s string) (Judgment, error) {
	var j Judgment
	if err := json.Unmarshal([]byte(s), &j); err != nil {
		return Judgment{}, err
	}
	if j.Score < 0 {
		j.Score = 0
	}
	if j.Score > domain.MaxCriterionScore {
		j.Score = domain.MaxCriterionScore
	}
	return j, nil
}
