package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/cnt-labs/cnteval-cli/internal/chunker"
	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driving"
	"github.com/cnt-labs/cnteval-cli/internal/logger"
)

// archivePrefix is where processed documents land in the archive store.
const archivePrefix = "processed"

// IngestService turns parsed documents into indexed chunks: chunk,
// embed, index, archive. Reprocessing a submission replaces its prior
// chunks.
type IngestService struct {
	chunker  *chunker.Chunker
	embedder *BatchEmbedder
	store    driven.VectorStore
	archive  driven.ArchiveStore
}

// IngestOption configures the ingest service.
type IngestOption func(*IngestService)

// WithArchive enables archiving of processed documents.
func WithArchive(store driven.ArchiveStore) IngestOption {
	return func(s *IngestService) {
		s.archive = store
	}
}

// NewIngestService creates an ingest service over the given pipeline
// stages.
func NewIngestService(
	ck *chunker.Chunker,
	embedder *BatchEmbedder,
	store driven.VectorStore,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{chunker: ck, embedder: embedder, store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process chunks, embeds, indexes and archives one document. Chunks
// whose embedding failed are counted but not indexed. Archive failure
// is logged and leaves the report's ArchiveURI empty; the index is
// already consistent at that point.
func (s *IngestService) Process(ctx context.Context, doc *domain.Document) (driving.IngestReport, error) {
	if doc == nil || doc.TechID == "" {
		return driving.IngestReport{}, fmt.Errorf("%w: document without tech id", domain.ErrInvalidInput)
	}

	logger.Section("Processing submission %s (%s)", doc.TechID, doc.FileName)

	deleted, err := s.store.DeleteBySubmission(ctx, doc.TechID)
	if err != nil {
		return driving.IngestReport{}, fmt.Errorf("clear prior chunks: %w", err)
	}
	if deleted > 0 {
		logger.Info("Replaced %d previously indexed chunks for %s", deleted, doc.TechID)
	}

	chunks := s.chunker.ChunkBySection(doc)
	if len(chunks) == 0 {
		return driving.IngestReport{}, fmt.Errorf("%w: document produced no chunks", domain.ErrInvalidInput)
	}
	logger.Info("Chunked %s into %d chunks", doc.TechID, len(chunks))

	embedded := s.embedder.EmbedChunks(ctx, chunks)
	report := driving.IngestReport{
		TechID:     doc.TechID,
		ChunkCount: len(chunks),
	}
	for _, ec := range embedded {
		if ec.Embedded() {
			report.EmbeddedCount++
		} else {
			report.FailedCount++
		}
	}
	if report.EmbeddedCount == 0 {
		return report, fmt.Errorf("embed %s: every chunk failed: %w", doc.TechID, domain.ErrEmbeddingUnavailable)
	}

	indexed, err := s.store.Index(ctx, embedded)
	if err != nil {
		return report, fmt.Errorf("index %s: %w", doc.TechID, err)
	}
	report.IndexedCount = indexed
	logger.Info("Indexed %d/%d chunks for %s", indexed, len(chunks), doc.TechID)

	if s.archive != nil {
		uri, err := s.archiveDocument(ctx, doc)
		if err != nil {
			logger.Warn("Archiving %s failed: %v", doc.TechID, err)
		} else {
			report.ArchiveURI = uri
		}
	}

	return report, nil
}

// Delete removes every indexed chunk of one submission.
func (s *IngestService) Delete(ctx context.Context, techID string) (int, error) {
	if techID == "" {
		return 0, fmt.Errorf("%w: empty tech id", domain.ErrInvalidInput)
	}
	return s.store.DeleteBySubmission(ctx, techID)
}

// archiveDocument stores the parsed document JSON under
// processed/<tech id>/<file name>.
func (s *IngestService) archiveDocument(ctx context.Context, doc *domain.Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	name := doc.FileName
	if name == "" {
		name = doc.TechID + ".json"
	}
	key := path.Join(archivePrefix, doc.TechID, name)

	return s.archive.Put(ctx, key, data)
}
