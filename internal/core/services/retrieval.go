package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
	"github.com/cnt-labs/cnteval-cli/internal/logger"
)

// DefaultRetrievalK is the per-query result count used when the caller
// does not specify one.
const DefaultRetrievalK = 10

// contextSeparator joins formatted evidence blocks.
const contextSeparator = "\n---\n"

// RetrievalService embeds queries, searches the vector store and
// assembles evidence context for the judging prompts. It also backs the
// ad-hoc search surface of the CLI and the MCP server.
type RetrievalService struct {
	embedder *BatchEmbedder
	store    driven.VectorStore
}

// NewRetrievalService creates a retrieval service over the given
// embedder and store.
func NewRetrievalService(embedder *BatchEmbedder, store driven.VectorStore) *RetrievalService {
	return &RetrievalService{embedder: embedder, store: store}
}

// Search embeds the query text and runs a single vector store query.
// Hybrid mixes keyword and vector ranking in the store.
func (s *RetrievalService) Search(
	ctx context.Context,
	query string,
	filter domain.SearchFilter,
	k int,
	hybrid bool,
) ([]domain.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = DefaultRetrievalK
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if hybrid {
		return s.store.HybridSearch(ctx, query, vector, filter, k)
	}
	return s.store.Search(ctx, vector, filter, k)
}

// Stats reports vector store size.
func (s *RetrievalService) Stats(ctx context.Context) (domain.StoreStats, error) {
	return s.store.Stats(ctx)
}

// Assemble runs every query against one submission's chunks, merges the
// hits and formats them into a single evidence context string.
//
// Duplicates across queries keep their first-seen score. The merged
// pool is ordered by score descending and truncated to k results per
// query. No hits at all yields an empty string, which callers treat as
// a failed search rather than an error.
func (s *RetrievalService) Assemble(
	ctx context.Context,
	techID string,
	queries []string,
	k int,
) (string, error) {
	if techID == "" {
		return "", fmt.Errorf("%w: empty tech id", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = DefaultRetrievalK
	}

	filter := domain.SearchFilter{TechID: techID}
	seen := make(map[domain.ChunkKey]struct{})
	var pool []domain.RetrievalResult

	for _, query := range queries {
		if strings.TrimSpace(query) == "" {
			continue
		}

		vector, err := s.embedder.EmbedQuery(ctx, query)
		if err != nil {
			return "", fmt.Errorf("embed query %q: %w", query, err)
		}

		results, err := s.store.Search(ctx, vector, filter, k)
		if err != nil {
			return "", fmt.Errorf("search %q: %w", query, err)
		}

		for _, r := range results {
			if _, ok := seen[r.Key()]; ok {
				continue
			}
			seen[r.Key()] = struct{}{}
			pool = append(pool, r)
		}
	}

	if len(pool) == 0 {
		logger.Warn("No evidence found for submission %s across %d queries", techID, len(queries))
		return "", nil
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	limit := k * len(queries)
	if len(pool) > limit {
		pool = pool[:limit]
	}

	logger.Debug("Assembled %d evidence chunks for %s", len(pool), techID)
	return FormatContext(pool), nil
}

// FormatContext renders retrieval results as numbered evidence blocks.
func FormatContext(results []domain.RetrievalResult) string {
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		section := r.Section
		if section == "" {
			section = "unknown"
		}
		header := fmt.Sprintf("[doc %d] (section: %s, pages: %v)", i+1, section, r.PageNumbers)
		blocks = append(blocks, header+"\n"+r.Content)
	}
	return strings.Join(blocks, contextSeparator)
}
