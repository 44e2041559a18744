package domain

import "time"

// Criterion identifies one independently scored evaluation dimension.
type Criterion string

// The three criteria of the certification review.
const (
	// CriterionNovelty judges differentiation from prior art and
	// originality. Stage 1.
	CriterionNovelty Criterion = "novelty"

	// CriterionProgress judges quality improvement, safety and degree
	// of advancement over existing technology. Stage 1.
	CriterionProgress Criterion = "progressiveness"

	// CriterionField judges field applicability: site excellence,
	// economics and marketability. Stage 2.
	CriterionField Criterion = "field_applicability"
)

// String returns the criterion name.
func (c Criterion) String() string { return string(c) }

// Score bounds and thresholds on the 0-5 criterion scale.
const (
	// MaxCriterionScore is the top of the per-criterion scale.
	MaxCriterionScore = 5.0

	// DefaultPassThreshold is the per-criterion pass mark.
	DefaultPassThreshold = 3.0

	// DefaultOverallCutoff is the overall pass mark on the 0-100 scale.
	DefaultOverallCutoff = 70.0
)

// Grade labels derived from rounded scores.
const (
	GradeExcellent    = "excellent"
	GradeGood         = "good"
	GradeFair         = "fair"
	GradePoor         = "poor"
	GradeUnacceptable = "unacceptable"

	// GradeSearchFailed marks a criterion that found no evidence.
	GradeSearchFailed = "search failed"

	// GradeParseError marks a criterion whose judgment response could
	// not be parsed.
	GradeParseError = "parse error"

	// GradeJudgmentFailed marks a criterion whose judge call itself
	// failed.
	GradeJudgmentFailed = "judgment failed"
)

// gradeLabels maps rounded scores to human-readable labels.
var gradeLabels = map[int]string{
	5: GradeExcellent,
	4: GradeGood,
	3: GradeFair,
	2: GradePoor,
	1: GradeUnacceptable,
}

// GradeForScore returns the label for a 0-5 score, rounding to the
// nearest integer. Unmapped scores default to "fair".
func GradeForScore(score float64) string {
	rounded := int(score + 0.5)
	if label, ok := gradeLabels[rounded]; ok {
		return label
	}
	return GradeFair
}

// Evidence is a structured citation supporting a criterion's score.
type Evidence struct {
	// Type names the sub-aspect the evidence supports
	// (e.g. "differentiation", "safety").
	Type string `json:"type"`

	// Content is the cited passage or finding.
	Content string `json:"content"`

	// Location points at the document/page the evidence came from.
	Location string `json:"location,omitempty"`

	// Quantitative carries a numeric claim when the evidence states one.
	Quantitative string `json:"quantitative_data,omitempty"`
}

// CriterionResult is the outcome of scoring one criterion.
type CriterionResult struct {
	// Criterion names the scored dimension.
	Criterion Criterion `json:"criterion"`

	// Score is the continuous 0-5 score.
	Score float64 `json:"score"`

	// Grade is the label derived from the score, or a dedicated
	// failure grade.
	Grade string `json:"grade"`

	// Evidence lists the citations backing the score.
	Evidence []Evidence `json:"evidence"`

	// Comments is the judge's free-text assessment.
	Comments string `json:"comments"`

	// Pass is true when Score meets the per-criterion threshold.
	Pass bool `json:"pass"`

	// SubScores carries optional named sub-aspect scores.
	SubScores map[string]float64 `json:"sub_scores,omitempty"`
}

// StageResult groups the criteria evaluated together as one gated unit.
type StageResult struct {
	// Criteria holds the per-criterion results of this stage.
	Criteria map[Criterion]CriterionResult `json:"criteria"`

	// Score is the stage contribution on the 0-50 scale.
	Score float64 `json:"total_score"`

	// Pass is true when every criterion in the stage passed.
	Pass bool `json:"pass"`
}

// Summary is the human-readable digest of an evaluation.
type Summary struct {
	// OverallGrade is "pass" or "fail".
	OverallGrade string `json:"overall_grade"`

	// StrongPoints lists criteria scoring 4 or above.
	StrongPoints []string `json:"strong_points"`

	// WeakPoints lists criteria scoring below 3.
	WeakPoints []string `json:"weak_points"`

	// Recommendations lists truncated remediation notes for every
	// failed criterion.
	Recommendations []string `json:"recommendations"`
}

// EvaluationOutcome is the final aggregated verdict for a submission.
type EvaluationOutcome struct {
	// RunID uniquely identifies this evaluation run.
	RunID string `json:"run_id"`

	// TechID is the evaluated submission.
	TechID string `json:"tech_id"`

	// EvaluatedAt is when the evaluation completed.
	EvaluatedAt time.Time `json:"evaluation_date"`

	// Stage1 holds the novelty and progressiveness results.
	Stage1 StageResult `json:"stage_1"`

	// Stage2 holds the field applicability result.
	Stage2 StageResult `json:"stage_2"`

	// OverallScore is the deterministic 0-100 combination of the
	// stage scores.
	OverallScore float64 `json:"overall_score"`

	// OverallPass requires every criterion to pass individually and
	// the overall score to meet the cutoff.
	OverallPass bool `json:"overall_pass"`

	// Summary is the derived strengths/weaknesses digest.
	Summary Summary `json:"summary"`
}
