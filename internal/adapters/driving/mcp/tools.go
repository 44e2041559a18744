package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
)

// EvaluateInput is the input schema for the evaluate_submission tool.
type EvaluateInput struct {
	TechID string `json:"tech_id" jsonschema:"identifier of the indexed technology submission to evaluate"`
}

// SearchInput is the input schema for the search_chunks tool.
type SearchInput struct {
	Query  string `json:"query" jsonschema:"the search query to find evidence chunks"`
	TechID string `json:"tech_id,omitempty" jsonschema:"restrict results to one submission"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	Hybrid bool   `json:"hybrid,omitempty" jsonschema:"mix keyword and vector ranking"`
}

// SearchOutput is the output schema for the search_chunks tool.
type SearchOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	TechID      string  `json:"tech_id"`
	ChunkIndex  int     `json:"chunk_index"`
	Section     string  `json:"section,omitempty"`
	PageNumbers []int   `json:"page_numbers,omitempty"`
	Score       float64 `json:"score"`
	Content     string  `json:"content"`
}

// StatusInput is the (empty) input schema for the index_status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the index_status tool.
type StatusOutput struct {
	ChunkCount int   `json:"chunk_count"`
	SizeBytes  int64 `json:"size_bytes"`
}

// LiteratureInput is the input schema for the search_literature tool.
type LiteratureInput struct {
	Query  string `json:"query" jsonschema:"the prior-art search query"`
	Target string `json:"target,omitempty" jsonschema:"collection to search: papers, patents, reports or trends (default papers)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// LiteratureOutput is the output schema for the search_literature tool.
type LiteratureOutput struct {
	Hits  []driven.LiteratureHit `json:"hits"`
	Count int                    `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate_submission",
		Description: "Run the full two-stage certification evaluation for an indexed submission",
	}, s.handleEvaluate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_chunks",
		Description: "Search indexed submission chunks for evidence",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_status",
		Description: "Report how many chunks are indexed and the index size",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_literature",
		Description: "Search external literature databases for prior art",
	}, s.handleLiterature)
}

// handleEvaluate handles the evaluate_submission tool invocation.
func (s *Server) handleEvaluate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EvaluateInput,
) (*mcp.CallToolResult, domain.EvaluationOutcome, error) {
	if strings.TrimSpace(input.TechID) == "" {
		return nil, domain.EvaluationOutcome{}, fmt.Errorf("%w: tech_id is required", domain.ErrInvalidInput)
	}

	outcome, err := s.ports.Evaluation.Evaluate(ctx, input.TechID)
	if err != nil {
		return nil, domain.EvaluationOutcome{}, err
	}

	return nil, outcome, nil
}

// handleSearch handles the search_chunks tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	filter := domain.SearchFilter{TechID: input.TechID}
	results, err := s.ports.Retrieval.Search(ctx, input.Query, filter, limit, input.Hybrid)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]ChunkOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = ChunkOutput{
			TechID:      results[i].TechID,
			ChunkIndex:  results[i].ChunkIndex,
			Section:     results[i].Section,
			PageNumbers: results[i].PageNumbers,
			Score:       results[i].Score,
			Content:     results[i].Content,
		}
	}

	return nil, output, nil
}

// handleStatus handles the index_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	stats, err := s.ports.Retrieval.Stats(ctx)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	return nil, StatusOutput{
		ChunkCount: stats.ChunkCount,
		SizeBytes:  stats.SizeBytes,
	}, nil
}

// literatureTargets maps tool spellings to gateway collections.
var literatureTargets = map[string]driven.LiteratureTarget{
	"papers":  driven.TargetPapers,
	"patents": driven.TargetPatents,
	"reports": driven.TargetReports,
	"trends":  driven.TargetTrends,
}

// handleLiterature handles the search_literature tool invocation.
func (s *Server) handleLiterature(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LiteratureInput,
) (*mcp.CallToolResult, LiteratureOutput, error) {
	if s.ports.Literature == nil {
		return nil, LiteratureOutput{}, errors.New("literature gateway not configured")
	}

	targetName := input.Target
	if targetName == "" {
		targetName = "papers"
	}
	target, ok := literatureTargets[strings.ToLower(targetName)]
	if !ok {
		return nil, LiteratureOutput{}, fmt.Errorf("%w: unknown target %q", domain.ErrInvalidInput, input.Target)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	hits, err := s.ports.Literature.Search(ctx, target, input.Query, limit)
	if err != nil {
		return nil, LiteratureOutput{}, err
	}

	return nil, LiteratureOutput{Hits: hits, Count: len(hits)}, nil
}
