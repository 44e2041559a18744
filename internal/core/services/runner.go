package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/logger"
)

// recommendationLimit caps each remediation note in the summary.
const recommendationLimit = 100

// stageScale converts a mean 0-5 criterion score into a 0-50 stage
// contribution.
const stageScale = 10

// EvaluationRunner orchestrates the two-stage review: stage 1 scores
// novelty and progressiveness, stage 2 scores field applicability, and
// the outcome combines them deterministically.
type EvaluationRunner struct {
	evaluator     *CriterionEvaluator
	overallCutoff float64
}

// RunnerOption configures the evaluation runner.
type RunnerOption func(*EvaluationRunner)

// WithOverallCutoff sets the overall pass mark on the 0-100 scale.
func WithOverallCutoff(cutoff float64) RunnerOption {
	return func(r *EvaluationRunner) {
		if cutoff > 0 {
			r.overallCutoff = cutoff
		}
	}
}

// NewEvaluationRunner creates a runner over the given evaluator.
func NewEvaluationRunner(evaluator *CriterionEvaluator, opts ...RunnerOption) *EvaluationRunner {
	r := &EvaluationRunner{
		evaluator:     evaluator,
		overallCutoff: domain.DefaultOverallCutoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Evaluate runs both stages for a submission and aggregates the
// verdict. Stage 2 runs regardless of the stage 1 outcome so the
// report always covers all three criteria. Only misconfiguration
// errors propagate; operational failures arrive as zero-score
// criterion results.
func (r *EvaluationRunner) Evaluate(ctx context.Context, techID string) (domain.EvaluationOutcome, error) {
	if techID == "" {
		return domain.EvaluationOutcome{}, fmt.Errorf("%w: empty tech id", domain.ErrInvalidInput)
	}

	logger.Section("Evaluating submission %s", techID)

	stage1, err := r.runStage1(ctx, techID)
	if err != nil {
		return domain.EvaluationOutcome{}, err
	}

	field, err := r.evaluator.Evaluate(ctx, techID, domain.CriterionField)
	if err != nil {
		return domain.EvaluationOutcome{}, err
	}
	stage2 := domain.StageResult{
		Criteria: map[domain.Criterion]domain.CriterionResult{
			domain.CriterionField: field,
		},
		Score: field.Score * stageScale,
		Pass:  field.Pass,
	}

	overall := stage1.Score + stage2.Score
	pass := stage1.Pass && stage2.Pass && overall >= r.overallCutoff

	outcome := domain.EvaluationOutcome{
		RunID:        uuid.NewString(),
		TechID:       techID,
		EvaluatedAt:  time.Now().UTC(),
		Stage1:       stage1,
		Stage2:       stage2,
		OverallScore: overall,
		OverallPass:  pass,
		Summary:      buildSummary(stage1, stage2, pass),
	}

	logger.Info("Submission %s scored %.1f/100 (pass=%v)", techID, overall, pass)
	return outcome, nil
}

// EvaluateCriterion scores a single criterion, for spot checks.
func (r *EvaluationRunner) EvaluateCriterion(ctx context.Context, techID string, criterion domain.Criterion) (domain.CriterionResult, error) {
	if techID == "" {
		return domain.CriterionResult{}, fmt.Errorf("%w: empty tech id", domain.ErrInvalidInput)
	}
	return r.evaluator.Evaluate(ctx, techID, criterion)
}

// runStage1 scores novelty and progressiveness concurrently. The stage
// passes only when both criteria pass, and its score is the mean of the
// two criterion scores scaled to 0-50.
func (r *EvaluationRunner) runStage1(ctx context.Context, techID string) (domain.StageResult, error) {
	var wg sync.WaitGroup
	var novelty, progress domain.CriterionResult
	var noveltyErr, progressErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		novelty, noveltyErr = r.evaluator.Evaluate(ctx, techID, domain.CriterionNovelty)
	}()
	go func() {
		defer wg.Done()
		progress, progressErr = r.evaluator.Evaluate(ctx, techID, domain.CriterionProgress)
	}()
	wg.Wait()

	if noveltyErr != nil {
		return domain.StageResult{}, noveltyErr
	}
	if progressErr != nil {
		return domain.StageResult{}, progressErr
	}

	return domain.StageResult{
		Criteria: map[domain.Criterion]domain.CriterionResult{
			domain.CriterionNovelty:  novelty,
			domain.CriterionProgress: progress,
		},
		Score: (novelty.Score*0.5 + progress.Score*0.5) * stageScale,
		Pass:  novelty.Pass && progress.Pass,
	}, nil
}

// summaryOrder fixes the criterion ordering in summaries so reports are
// reproducible.
var summaryOrder = []domain.Criterion{
	domain.CriterionNovelty,
	domain.CriterionProgress,
	domain.CriterionField,
}

// buildSummary derives the strengths/weaknesses digest from the stage
// results.
func buildSummary(stage1, stage2 domain.StageResult, pass bool) domain.Summary {
	results := make(map[domain.Criterion]domain.CriterionResult, 3)
	for c, res := range stage1.Criteria {
		results[c] = res
	}
	for c, res := range stage2.Criteria {
		results[c] = res
	}

	summary := domain.Summary{
		OverallGrade:    "fail",
		StrongPoints:    []string{},
		WeakPoints:      []string{},
		Recommendations: []string{},
	}
	if pass {
		summary.OverallGrade = "pass"
	}

	for _, c := range summaryOrder {
		res, ok := results[c]
		if !ok {
			continue
		}
		if res.Score >= 4 {
			summary.StrongPoints = append(summary.StrongPoints, c.String())
		}
		if res.Score < 3 {
			summary.WeakPoints = append(summary.WeakPoints, c.String())
		}
		if !res.Pass {
			note := res.Comments
			if len(note) > recommendationLimit {
				note = note[:recommendationLimit]
			}
			summary.Recommendations = append(summary.Recommendations,
				fmt.Sprintf("%s: %s", c, note))
		}
	}

	return summary
}
