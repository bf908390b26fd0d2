package mcp

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the URI scheme of finconnect resources.
	uriScheme = "finconnect://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "modules",
		Name:        "modules",
		Description: "Source modules published by the repository, with their install state",
		MIMEType:    "application/json",
	}, s.handleModulesResource)
}

// handleModulesResource returns the published modules as JSON.
func (s *Server) handleModulesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	text := "[]"
	if s.ports.Modules != nil {
		_, out, err := s.handleListModules(ctx, nil, ListModulesInput{})
		if err != nil {
			return nil, fmt.Errorf("listing modules: %w", err)
		}
		data, err := json.Marshal(out.Modules)
		if err != nil {
			return nil, fmt.Errorf("encoding modules: %w", err)
		}
		text = string(data)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     text,
		}},
	}, nil
}
