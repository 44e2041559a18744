package driving

import (
	"context"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

// IngestReport summarises one document's trip through the ingest
// pipeline.
type IngestReport struct {
	// TechID is the processed submission.
	TechID string `json:"tech_id"`

	// ChunkCount is the number of chunks produced.
	ChunkCount int `json:"chunk_count"`

	// EmbeddedCount is the number of chunks that embedded successfully.
	EmbeddedCount int `json:"embedded_count"`

	// FailedCount is the number of chunks whose embedding failed.
	FailedCount int `json:"failed_count"`

	// IndexedCount is the number of chunks the vector store accepted.
	IndexedCount int `json:"indexed_count"`

	// ArchiveURI is where the processed document was archived, empty
	// when archiving is disabled.
	ArchiveURI string `json:"archive_uri,omitempty"`
}

// IngestService turns a parsed document into indexed, searchable chunks.
type IngestService interface {
	// Process chunks, embeds, indexes and archives one document.
	// Prior chunks for the same submission are replaced.
	Process(ctx context.Context, doc *domain.Document) (IngestReport, error)

	// Delete removes every indexed chunk of one submission.
	Delete(ctx context.Context, techID string) (int, error)
}
