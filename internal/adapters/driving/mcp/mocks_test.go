package mcp

import (
	"context"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driving"
)

// mockEvaluationService is a mock implementation of driving.EvaluationService.
type mockEvaluationService struct {
	outcome domain.EvaluationOutcome
	result  domain.CriterionResult
	err     error
}

func (m *mockEvaluationService) Evaluate(_ context.Context, _ string) (domain.EvaluationOutcome, error) {
	return m.outcome, m.err
}

func (m *mockEvaluationService) EvaluateCriterion(
	_ context.Context,
	_ string,
	_ domain.Criterion,
) (domain.CriterionResult, error) {
	return m.result, m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.RetrievalResult
	stats   domain.StoreStats
	err     error

	lastQuery  string
	lastFilter domain.SearchFilter
	lastK      int
	lastHybrid bool
}

func (m *mockRetrievalService) Search(
	_ context.Context,
	query string,
	filter domain.SearchFilter,
	k int,
	hybrid bool,
) ([]domain.RetrievalResult, error) {
	m.lastQuery = query
	m.lastFilter = filter
	m.lastK = k
	m.lastHybrid = hybrid
	return m.results, m.err
}

func (m *mockRetrievalService) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report  driving.IngestReport
	deleted int
	err     error
}

func (m *mockIngestService) Process(_ context.Context, _ *domain.Document) (driving.IngestReport, error) {
	return m.report, m.err
}

func (m *mockIngestService) Delete(_ context.Context, _ string) (int, error) {
	return m.deleted, m.err
}

// mockLiteratureService is a mock implementation of driven.LiteratureService.
type mockLiteratureService struct {
	hits []driven.LiteratureHit
	err  error

	lastTarget driven.LiteratureTarget
	lastLimit  int
}

func (m *mockLiteratureService) Search(
	_ context.Context,
	target driven.LiteratureTarget,
	_ string,
	limit int,
) ([]driven.LiteratureHit, error) {
	m.lastTarget = target
	m.lastLimit = limit
	return m.hits, m.err
}

func (m *mockLiteratureService) Ping(_ context.Context) error {
	return m.err
}
