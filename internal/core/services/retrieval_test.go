package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

// fakeStore returns canned results per query call, in order.
type fakeStore struct {
	results     [][]domain.RetrievalResult
	call        int
	hybridCalls int
	lastFilter  domain.SearchFilter
	lastK       int
}

func (f *fakeStore) Index(_ context.Context, chunks []domain.EmbeddedChunk) (int, error) {
	return len(chunks), nil
}

func (f *fakeStore) Search(_ context.Context, _ []float32, filter domain.SearchFilter, k int) ([]domain.RetrievalResult, error) {
	f.lastFilter = filter
	f.lastK = k
	if f.call >= len(f.results) {
		return nil, nil
	}
	r := f.results[f.call]
	f.call++
	return r, nil
}

func (f *fakeStore) HybridSearch(ctx context.Context, _ string, query []float32, filter domain.SearchFilter, k int) ([]domain.RetrievalResult, error) {
	f.hybridCalls++
	return f.Search(ctx, query, filter, k)
}

func (f *fakeStore) DeleteBySubmission(_ context.Context, _ string) (int, error) { return 0, nil }

func (f *fakeStore) Stats(_ context.Context) (domain.StoreStats, error) {
	return domain.StoreStats{ChunkCount: 42}, nil
}

func (f *fakeStore) Close() error { return nil }

func hit(techID string, index int, content string, score float64) domain.RetrievalResult {
	return domain.RetrievalResult{
		TechID:      techID,
		ChunkIndex:  index,
		Content:     content,
		Section:     "technology overview",
		PageNumbers: []int{1},
		Score:       score,
	}
}

func newTestRetrieval(store *fakeStore) *RetrievalService {
	embedder := NewBatchEmbedder(&fakeEmbedding{}, WithRetryPolicy(testPolicy()))
	return NewRetrievalService(embedder, store)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc := newTestRetrieval(&fakeStore{})

	_, err := svc.Search(context.Background(), "   ", domain.SearchFilter{}, 5, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchUsesHybridWhenAsked(t *testing.T) {
	store := &fakeStore{results: [][]domain.RetrievalResult{{hit("2367", 0, "x", 0.9)}}}
	svc := newTestRetrieval(store)

	results, err := svc.Search(context.Background(), "fatigue testing", domain.SearchFilter{}, 5, true)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, store.hybridCalls)
}

func TestSearchDefaultsK(t *testing.T) {
	store := &fakeStore{}
	svc := newTestRetrieval(store)

	_, err := svc.Search(context.Background(), "anything", domain.SearchFilter{}, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 10, store.lastK)
}

func TestAssembleDefaultsKToTen(t *testing.T) {
	store := &fakeStore{}
	svc := newTestRetrieval(store)

	_, err := svc.Assemble(context.Background(), "2367", []string{"q"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, store.lastK)
}

func TestAssembleDeduplicatesAcrossQueries(t *testing.T) {
	// Both queries return chunk 0; the first-seen score must win.
	store := &fakeStore{results: [][]domain.RetrievalResult{
		{hit("2367", 0, "shared evidence", 0.9), hit("2367", 1, "first only", 0.5)},
		{hit("2367", 0, "shared evidence", 0.95), hit("2367", 2, "second only", 0.7)},
	}}
	svc := newTestRetrieval(store)

	ctx, err := svc.Assemble(context.Background(), "2367", []string{"q1", "q2"}, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(ctx, "shared evidence"))
	assert.Contains(t, ctx, "first only")
	assert.Contains(t, ctx, "second only")
	assert.Equal(t, domain.SearchFilter{TechID: "2367"}, store.lastFilter)
}

func TestAssembleOrdersByScoreAndTruncates(t *testing.T) {
	store := &fakeStore{results: [][]domain.RetrievalResult{
		{hit("2367", 0, "low", 0.2), hit("2367", 1, "high", 0.9), hit("2367", 2, "mid", 0.5)},
	}}
	svc := newTestRetrieval(store)

	// k=2 with one query caps the pool at 2 results.
	ctx, err := svc.Assemble(context.Background(), "2367", []string{"q1"}, 2)
	require.NoError(t, err)

	assert.Contains(t, ctx, "high")
	assert.Contains(t, ctx, "mid")
	assert.NotContains(t, ctx, "low")
	assert.Less(t, strings.Index(ctx, "high"), strings.Index(ctx, "mid"))
}

func TestAssembleEmptyResultsYieldEmptyContext(t *testing.T) {
	svc := newTestRetrieval(&fakeStore{})

	ctx, err := svc.Assemble(context.Background(), "2367", []string{"q1", "q2"}, 5)
	require.NoError(t, err)
	assert.Empty(t, ctx)
}

func TestAssembleRejectsEmptyTechID(t *testing.T) {
	svc := newTestRetrieval(&fakeStore{})

	_, err := svc.Assemble(context.Background(), "", []string{"q1"}, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFormatContext(t *testing.T) {
	results := []domain.RetrievalResult{
		{TechID: "2367", ChunkIndex: 3, Content: "body one", Section: "economic analysis", PageNumbers: []int{4, 5}, Score: 0.8},
		{TechID: "2367", ChunkIndex: 7, Content: "body two", PageNumbers: []int{9}, Score: 0.6},
	}

	got := FormatContext(results)

	assert.Contains(t, got, "[doc 1] (section: economic analysis, pages: [4 5])\nbody one")
	assert.Contains(t, got, "[doc 2] (section: unknown, pages: [9])\nbody two")
	assert.Contains(t, got, "\n---\n")
}
