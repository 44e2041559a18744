package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/criteria"
)

const (
	// uriScheme is the custom URI scheme for evaluation resources.
	uriScheme = "cnteval://"
)

// criterionStages maps each criterion to the review stage it gates.
var criterionStages = map[domain.Criterion]int{
	domain.CriterionNovelty:  1,
	domain.CriterionProgress: 1,
	domain.CriterionField:    2,
}

// criterionInfo is the JSON shape served for one criterion.
type criterionInfo struct {
	Name              string   `json:"name"`
	Stage             int      `json:"stage"`
	Queries           []string `json:"queries"`
	LiteratureQueries []string `json:"literature_queries,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource listing every review criterion.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "criteria",
		Name:        "criteria",
		Description: "The certification review criteria with their evidence queries",
		MIMEType:    "application/json",
	}, s.handleCriteriaResource)

	// Template for one criterion's detail.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "criteria/{name}",
		Name:        "criterion",
		Description: "Evidence queries and stage of a single review criterion",
		MIMEType:    "application/json",
	}, s.handleCriterionResource)
}

// handleCriteriaResource returns every criterion in stage order.
func (s *Server) handleCriteriaResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	specs := criteria.All()
	infos := make([]criterionInfo, len(specs))
	for i, spec := range specs {
		infos[i] = infoForSpec(spec)
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling criteria: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleCriterionResource returns the detail of one criterion.
func (s *Server) handleCriterionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractCriterionName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	spec, err := criteria.ForCriterion(domain.Criterion(name))
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(infoForSpec(spec), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling criterion: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func infoForSpec(spec criteria.Spec) criterionInfo {
	c := spec.Criterion()
	return criterionInfo{
		Name:              c.String(),
		Stage:             criterionStages[c],
		Queries:           spec.Queries(),
		LiteratureQueries: spec.LiteratureQueries(),
	}
}

// extractCriterionName extracts the criterion from a URI like cnteval://criteria/{name}.
func extractCriterionName(uri string) string {
	const prefix = uriScheme + "criteria/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
