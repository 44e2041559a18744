package domain

// RetrievalResult is one scored hit returned from the vector store.
// Uniqueness key is (tech id, chunk index).
type RetrievalResult struct {
	// TechID is the owning submission identifier.
	TechID string `json:"tech_id"`

	// ChunkIndex is the ordinal position of the matched chunk.
	ChunkIndex int `json:"chunk_index"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Section is the chunk's section label, may be empty.
	Section string `json:"section,omitempty"`

	// PageNumbers lists the pages the chunk covers.
	PageNumbers []int `json:"page_numbers"`

	// Score is the relevance score. Cosine similarity for plain vector
	// search, a weighted combination for hybrid search.
	Score float64 `json:"score"`
}

// Key returns the deduplication key for this result.
func (r RetrievalResult) Key() ChunkKey {
	return ChunkKey{TechID: r.TechID, Index: r.ChunkIndex}
}

// SearchFilter restricts a vector store query.
type SearchFilter struct {
	// TechID restricts results to one submission when non-empty.
	TechID string
}

// StoreStats reports vector store size for diagnostics.
type StoreStats struct {
	// ChunkCount is the number of indexed chunks.
	ChunkCount int `json:"chunk_count"`

	// SizeBytes is the on-disk size where the backend can report it,
	// zero otherwise.
	SizeBytes int64 `json:"size_bytes,omitempty"`
}
