package mcp

import (
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Evaluation runs the two-stage certification review.
	Evaluation driving.EvaluationService

	// Retrieval searches the indexed submission chunks.
	Retrieval driving.RetrievalService

	// Ingest processes submission documents. Optional.
	Ingest driving.IngestService

	// Literature searches external prior-art databases. Optional.
	Literature driven.LiteratureService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Evaluation == nil {
		return ErrMissingEvaluationService
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Ingest and Literature are optional; their tools report the gap.
	return nil
}
