package driving

import (
	"context"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

// EvaluationService runs the two-stage certification review.
type EvaluationService interface {
	// Evaluate runs both stages for a submission and aggregates the
	// verdict. It never fails outright: criterion-level failures
	// degrade to zero-score results inside the outcome.
	Evaluate(ctx context.Context, techID string) (domain.EvaluationOutcome, error)

	// EvaluateCriterion scores a single criterion, for spot checks.
	EvaluateCriterion(ctx context.Context, techID string, criterion domain.Criterion) (domain.CriterionResult, error)
}

// RetrievalService exposes the evidence search used by the CLI and the
// MCP server.
type RetrievalService interface {
	// Search embeds the query and returns the k best-matching chunks,
	// optionally restricted to one submission. Hybrid mixes keyword
	// and vector ranking.
	Search(ctx context.Context, query string, filter domain.SearchFilter, k int, hybrid bool) ([]domain.RetrievalResult, error)

	// Stats reports index size.
	Stats(ctx context.Context) (domain.StoreStats, error)
}
