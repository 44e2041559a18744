package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

func embedded(techID string, index int, content string, vector []float32) domain.EmbeddedChunk {
	return domain.EmbeddedChunk{
		Chunk: domain.Chunk{
			TechID:      techID,
			Index:       index,
			Content:     content,
			PageNumbers: []int{index + 1},
		},
		Vector: vector,
	}
}

func TestIndexSkipsFailedChunks(t *testing.T) {
	s := NewStore()

	n, err := s.Index(context.Background(), []domain.EmbeddedChunk{
		embedded("2367", 0, "good", []float32{1, 0}),
		{Chunk: domain.Chunk{TechID: "2367", Index: 1, Content: "bad"}, EmbedError: "backend down"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ChunkCount)
}

func TestIndexOverwritesSameKey(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Index(ctx, []domain.EmbeddedChunk{embedded("2367", 0, "old", []float32{1, 0})})
	require.NoError(t, err)
	_, err = s.Index(ctx, []domain.EmbeddedChunk{embedded("2367", 0, "new", []float32{1, 0})})
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{1, 0}, domain.SearchFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Content)
}

func TestSearchRanksByCosine(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Index(ctx, []domain.EmbeddedChunk{
		embedded("2367", 0, "aligned", []float32{1, 0}),
		embedded("2367", 1, "diagonal", []float32{1, 1}),
		embedded("2367", 2, "orthogonal", []float32{0, 1}),
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{1, 0}, domain.SearchFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "aligned", results[0].Content)
	assert.Equal(t, "diagonal", results[1].Content)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestSearchFilterRestrictsSubmission(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Index(ctx, []domain.EmbeddedChunk{
		embedded("2367", 0, "mine", []float32{1, 0}),
		embedded("9999", 0, "other", []float32{1, 0}),
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{1, 0}, domain.SearchFilter{TechID: "2367"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2367", results[0].TechID)
}

func TestSearchDimensionMismatch(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Index(ctx, []domain.EmbeddedChunk{embedded("2367", 0, "x", []float32{1, 0, 0})})
	require.NoError(t, err)

	_, err = s.Search(ctx, []float32{1, 0}, domain.SearchFilter{}, 5)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestHybridSearchBoostsKeywordMatches(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	// Identical vectors; only the keyword component separates them.
	_, err := s.Index(ctx, []domain.EmbeddedChunk{
		embedded("2367", 0, "discusses fatigue testing in detail", []float32{1, 0}),
		embedded("2367", 1, "unrelated economics content", []float32{1, 0}),
	})
	require.NoError(t, err)

	results, err := s.HybridSearch(ctx, "fatigue testing", []float32{1, 0}, domain.SearchFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].ChunkIndex)
	assert.Greater(t, results[0].Score, results[1].Score)
	// 0.3*1.0 + 0.7*1.0 for the full keyword match.
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestDeleteBySubmission(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Index(ctx, []domain.EmbeddedChunk{
		embedded("2367", 0, "a", []float32{1}),
		embedded("2367", 1, "b", []float32{1}),
		embedded("9999", 0, "c", []float32{1}),
	})
	require.NoError(t, err)

	n, err := s.DeleteBySubmission(ctx, "2367")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ChunkCount)
}

func TestCandidateLimit(t *testing.T) {
	// Small k floors at the minimum pool; large k scales linearly.
	assert.Equal(t, 2000, candidateLimit(5))
	assert.Equal(t, 2000, candidateLimit(500))
	assert.Equal(t, 4000, candidateLimit(1000))
}
