package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
	"github.com/cnt-labs/cnteval-cli/internal/criteria"
	"github.com/cnt-labs/cnteval-cli/internal/logger"
)

// DefaultJudgeTimeout bounds one judgment call.
const DefaultJudgeTimeout = 2 * time.Minute

// defaultGenerateOptions keeps judgments long enough for full evidence
// lists and near-deterministic.
var defaultGenerateOptions = driven.GenerateOptions{
	MaxTokens:   4096,
	Temperature: 0.1,
}

// rawSnippetLimit caps how much of an unparseable response is kept in
// the result comments.
const rawSnippetLimit = 500

// literatureHitLimit caps hits per collection in the prior-art digest.
const literatureHitLimit = 3

// CriterionEvaluator scores one criterion: it gathers evidence through
// retrieval, asks the judge model and parses the verdict. Failures
// degrade to zero-score results rather than errors so one bad criterion
// cannot abort a run.
type CriterionEvaluator struct {
	retrieval  *RetrievalService
	llm        driven.LLMService
	prompts    driven.PromptStore
	literature driven.LiteratureService

	k             int
	passThreshold float64
	timeout       time.Duration
}

// EvaluatorOption configures the criterion evaluator.
type EvaluatorOption func(*CriterionEvaluator)

// WithRetrievalK sets how many chunks each retrieval query contributes.
func WithRetrievalK(k int) EvaluatorOption {
	return func(e *CriterionEvaluator) {
		if k > 0 {
			e.k = k
		}
	}
}

// WithPassThreshold sets the per-criterion pass mark.
func WithPassThreshold(threshold float64) EvaluatorOption {
	return func(e *CriterionEvaluator) {
		if threshold > 0 {
			e.passThreshold = threshold
		}
	}
}

// WithJudgeTimeout bounds each judgment call.
func WithJudgeTimeout(d time.Duration) EvaluatorOption {
	return func(e *CriterionEvaluator) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLiterature enables the external prior-art search for criteria
// that use it.
func WithLiterature(svc driven.LiteratureService) EvaluatorOption {
	return func(e *CriterionEvaluator) {
		e.literature = svc
	}
}

// NewCriterionEvaluator creates an evaluator over the given
// collaborators.
func NewCriterionEvaluator(
	retrieval *RetrievalService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	opts ...EvaluatorOption,
) *CriterionEvaluator {
	e := &CriterionEvaluator{
		retrieval:     retrieval,
		llm:           llm,
		prompts:       prompts,
		k:             DefaultRetrievalK,
		passThreshold: domain.DefaultPassThreshold,
		timeout:       DefaultJudgeTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores one criterion for a submission. The returned error is
// reserved for misconfiguration (unknown criterion, missing prompt);
// operational failures come back as zero-score results.
func (e *CriterionEvaluator) Evaluate(ctx context.Context, techID string, criterion domain.Criterion) (domain.CriterionResult, error) {
	spec, err := criteria.ForCriterion(criterion)
	if err != nil {
		return domain.CriterionResult{}, err
	}

	systemPrompt, err := spec.SystemPrompt(e.prompts)
	if err != nil {
		return domain.CriterionResult{}, fmt.Errorf("load %s prompt: %w", criterion, err)
	}

	logger.Debug("Evaluating %s for submission %s", criterion, techID)

	evidence, err := e.retrieval.Assemble(ctx, techID, spec.Queries(), e.k)
	if err != nil {
		logger.Error("Evidence retrieval for %s/%s failed: %v", techID, criterion, err)
		return e.failedResult(criterion, domain.GradeSearchFailed,
			fmt.Sprintf("evidence retrieval failed: %v", err)), nil
	}
	if evidence == "" {
		logger.Warn("No evidence retrieved for %s/%s", techID, criterion)
		return e.failedResult(criterion, domain.GradeSearchFailed,
			"no matching document chunks were found for this submission"), nil
	}

	extra := e.priorArtDigest(ctx, spec)
	prompt := spec.BuildPrompt(techID, evidence, extra)

	judgeCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.llm.Generate(judgeCtx, systemPrompt, prompt, defaultGenerateOptions)
	if err != nil {
		logger.Error("Judgment call for %s/%s failed: %v", techID, criterion, err)
		return e.failedResult(criterion, domain.GradeJudgmentFailed,
			fmt.Sprintf("judgment call failed: %v", err)), nil
	}

	judgment, strategy, err := criteria.ParseResponse(raw)
	if err != nil {
		logger.Error("Unparseable judgment for %s/%s: %v", techID, criterion, err)
		return e.failedResult(criterion, domain.GradeParseError,
			fmt.Sprintf("failed to parse judgment: %v; raw response: %s", err, snippet(raw))), nil
	}

	logger.Debug("Parsed %s judgment via %s strategy: score %.2f", criterion, strategy, judgment.Score)

	return domain.CriterionResult{
		Criterion: criterion,
		Score:     judgment.Score,
		Grade:     domain.GradeForScore(judgment.Score),
		Evidence:  judgment.Evidence,
		Comments:  judgment.Comments,
		Pass:      judgment.Score >= e.passThreshold,
		SubScores: judgment.SubScores,
	}, nil
}

// failedResult builds the zero-score result used for every degradation
// path.
func (e *CriterionEvaluator) failedResult(criterion domain.Criterion, grade, comments string) domain.CriterionResult {
	return domain.CriterionResult{
		Criterion: criterion,
		Score:     0,
		Grade:     grade,
		Evidence:  []domain.Evidence{},
		Comments:  comments,
		Pass:      false,
	}
}

// priorArtDigest searches the literature gateway for the spec's
// external queries and renders a compact digest. A missing gateway or a
// failed search yields an empty digest; prior art is supplementary and
// must never block a judgment.
func (e *CriterionEvaluator) priorArtDigest(ctx context.Context, spec criteria.Spec) string {
	queries := spec.LiteratureQueries()
	if e.literature == nil || len(queries) == 0 {
		return ""
	}

	var b strings.Builder
	n := 0
	for _, query := range queries {
		for _, target := range []driven.LiteratureTarget{driven.TargetPapers, driven.TargetPatents} {
			hits, err := e.literature.Search(ctx, target, query, literatureHitLimit)
			if err != nil {
				logger.Warn("Literature search (%s) failed: %v", target, err)
				continue
			}
			for _, hit := range hits {
				n++
				fmt.Fprintf(&b, "%d. %s", n, hit.Title)
				if hit.Year != "" {
					fmt.Fprintf(&b, " (%s)", hit.Year)
				}
				if hit.Authors != "" {
					fmt.Fprintf(&b, " - %s", hit.Authors)
				}
				b.WriteString("\n")
				if hit.Abstract != "" {
					fmt.Fprintf(&b, "   %s\n", snippet(hit.Abstract))
				}
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// snippet truncates long text for inclusion in comments and digests.
func snippet(s string) string {
	if len(s) > rawSnippetLimit {
		return s[:rawSnippetLimit]
	}
	return s
}
