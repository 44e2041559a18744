package driven

import (
	"context"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

// VectorStore persists embedded chunks and answers similarity queries.
//
// Indexing is idempotent keyed by (tech id, chunk index): re-indexing
// a chunk overwrites rather than duplicates, which makes concurrent
// re-processing of the same submission safe without locking.
type VectorStore interface {
	// Index records the given embedded chunks and returns the number
	// actually indexed. Chunks without a usable vector are skipped.
	Index(ctx context.Context, chunks []domain.EmbeddedChunk) (int, error)

	// Search finds the k most similar chunks to the query vector.
	// When the filter names a submission, the store searches a wider
	// candidate pool (at least 2k) before filtering so the filter
	// cannot starve results. Similarity is cosine.
	Search(ctx context.Context, query []float32, filter domain.SearchFilter, k int) ([]domain.RetrievalResult, error)

	// HybridSearch combines a keyword-match score (weight 0.3) and
	// vector similarity (weight 0.7) into one ranking. Filter
	// semantics match Search.
	HybridSearch(ctx context.Context, queryText string, query []float32, filter domain.SearchFilter, k int) ([]domain.RetrievalResult, error)

	// DeleteBySubmission removes every chunk of one submission and
	// returns the number deleted. Used before reprocessing.
	DeleteBySubmission(ctx context.Context, techID string) (int, error)

	// Stats reports index size for diagnostics.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Close releases resources.
	Close() error
}
