// Package memory provides an in-memory vector store for tests and
// offline runs.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Candidate pool sizing ahead of submission filtering: max(2000, 4k).
const (
	minCandidatePool    = 2000
	candidateMultiplier = 4
)

// Hybrid ranking weights.
const (
	keywordWeight = 0.3
	vectorWeight  = 0.7
)

// Store keeps embedded chunks in memory, keyed by (tech id, chunk
// index). Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	chunks map[domain.ChunkKey]domain.EmbeddedChunk
}

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{chunks: make(map[domain.ChunkKey]domain.EmbeddedChunk)}
}

// Index records the given embedded chunks. Chunks without a usable
// vector are skipped. Re-indexing a key overwrites the previous entry.
func (s *Store) Index(_ context.Context, chunks []domain.EmbeddedChunk) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, ec := range chunks {
		if !ec.Embedded() {
			continue
		}
		s.chunks[ec.Key()] = ec
		n++
	}
	return n, nil
}

// Search finds the k most similar chunks to the query vector by cosine
// similarity. When the filter names a submission the store scores a
// wide candidate pool first so filtering cannot starve results.
func (s *Store) Search(_ context.Context, query []float32, filter domain.SearchFilter, k int) ([]domain.RetrievalResult, error) {
	return s.search(query, "", filter, k)
}

// HybridSearch combines keyword matching and vector similarity into one
// ranking.
func (s *Store) HybridSearch(_ context.Context, queryText string, query []float32, filter domain.SearchFilter, k int) ([]domain.RetrievalResult, error) {
	return s.search(query, queryText, filter, k)
}

func (s *Store) search(query []float32, queryText string, filter domain.SearchFilter, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]domain.RetrievalResult, 0, len(s.chunks))
	for _, ec := range s.chunks {
		score, err := cosine(query, ec.Vector)
		if err != nil {
			return nil, err
		}
		if queryText != "" {
			score = keywordWeight*keywordScore(queryText, ec.Content) + vectorWeight*score
		}
		scored = append(scored, domain.RetrievalResult{
			TechID:      ec.TechID,
			ChunkIndex:  ec.Index,
			Content:     ec.Content,
			Section:     ec.Section,
			PageNumbers: ec.PageNumbers,
			Score:       score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	// Widen the pool before filtering so a submission filter still sees
	// its best chunks even when other submissions dominate the top ranks.
	pool := scored
	if filter.TechID != "" {
		limit := candidateLimit(k)
		if len(pool) > limit {
			pool = pool[:limit]
		}
		filtered := pool[:0:0]
		for _, r := range pool {
			if r.TechID == filter.TechID {
				filtered = append(filtered, r)
			}
		}
		pool = filtered
	}

	if len(pool) > k {
		pool = pool[:k]
	}
	return pool, nil
}

// DeleteBySubmission removes every chunk of one submission.
func (s *Store) DeleteBySubmission(_ context.Context, techID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key := range s.chunks {
		if key.TechID == techID {
			delete(s.chunks, key)
			n++
		}
	}
	return n, nil
}

// Stats reports index size.
func (s *Store) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bytes int64
	for _, ec := range s.chunks {
		bytes += int64(len(ec.Content) + 4*len(ec.Vector))
	}
	return domain.StoreStats{ChunkCount: len(s.chunks), SizeBytes: bytes}, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// candidateLimit returns the pre-filter pool size for a k-result query.
func candidateLimit(k int) int {
	limit := k * candidateMultiplier
	if limit < minCandidatePool {
		limit = minCandidatePool
	}
	return limit
}

// cosine computes cosine similarity between two vectors of equal
// dimension.
func cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// keywordScore is the fraction of query terms present in the content,
// case-insensitive.
func keywordScore(query, content string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}

	haystack := strings.ToLower(content)
	matched := 0
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
