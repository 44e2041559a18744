// Package domain defines the core entities of the evaluation pipeline.
package domain

// Document represents one submission's parsed text.
// It is the canonical representation produced by the external parser
// and is immutable once created.
type Document struct {
	// TechID is the submission identifier, stable across reprocessing.
	TechID string `json:"tech_id"`

	// FileName is the original file name of the submission.
	FileName string `json:"file_name"`

	// Pages is the ordered list of source pages.
	Pages []Page `json:"pages"`

	// TableOfContents is the optional declared section structure.
	TableOfContents []TOCEntry `json:"table_of_contents,omitempty"`
}

// Page is one page of source text. Text may be empty for scanned or
// image-only pages.
type Page struct {
	// Number is the 1-based page number.
	Number int `json:"page_number"`

	// Text is the raw extracted text.
	Text string `json:"full_text"`
}

// TOCEntry is one declared table-of-contents entry.
type TOCEntry struct {
	// Title is the declared section title.
	Title string `json:"title"`

	// Page is the 1-based page the section starts on.
	Page int `json:"page"`
}

// Chunk is an addressable slice of combined document text, the unit of
// retrieval. Chunks are derived deterministically from a Document and
// are immutable once created.
type Chunk struct {
	// TechID is the owning submission identifier.
	TechID string `json:"tech_id"`

	// FileName is the source file name, carried for provenance.
	FileName string `json:"file_name"`

	// Index is the ordinal position within the submission, unique per
	// submission and contiguous from 0.
	Index int `json:"chunk_index"`

	// Content is the trimmed chunk text, never empty.
	Content string `json:"content"`

	// PageNumbers lists the pages the chunk covers, never empty
	// (falls back to page 1).
	PageNumbers []int `json:"page_numbers"`

	// Section is the detected or declared section label, empty when
	// no section matched.
	Section string `json:"section,omitempty"`

	// TokenCount is an approximate token count (len/4 heuristic).
	TokenCount int `json:"token_count,omitempty"`
}

// Key returns the uniqueness key (tech id, chunk index) used for
// idempotent indexing and retrieval deduplication.
func (c Chunk) Key() ChunkKey {
	return ChunkKey{TechID: c.TechID, Index: c.Index}
}

// ChunkKey identifies a chunk within the vector store.
type ChunkKey struct {
	TechID string
	Index  int
}

// EmbeddedChunk is a Chunk plus its embedding vector.
// On embedding failure the vector is empty and EmbedError records the
// reason; the record is retained so the batch stays complete.
type EmbeddedChunk struct {
	Chunk

	// Vector is the embedding, fixed dimension per embedding model.
	// Empty when embedding failed.
	Vector []float32 `json:"embedding,omitempty"`

	// EmbedError is the embedding failure reason, empty on success.
	EmbedError string `json:"embedding_error,omitempty"`
}

// Embedded reports whether the chunk carries a usable vector.
func (e EmbeddedChunk) Embedded() bool {
	return len(e.Vector) > 0
}
