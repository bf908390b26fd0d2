package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driving"
)

// FetchInput is the input schema of the fetch tools.
type FetchInput struct {
	Module   string               `json:"module" jsonschema:"identifier of the source module, e.g. demo"`
	Login    string               `json:"login" jsonschema:"login at the source"`
	Password string               `json:"password" jsonschema:"password at the source"`
	Fields   []domain.CustomField `json:"fields,omitempty" jsonschema:"custom fields the source requires, as name/value pairs"`
}

// FetchOutput is the result envelope: values on success, an error code
// otherwise.
type FetchOutput struct {
	Values       any    `json:"values,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorShort   string `json:"error_short,omitempty"`
	ErrorContent string `json:"error_content,omitempty"`
}

// ListModulesInput is the (empty) input of list_modules.
type ListModulesInput struct{}

// ListModulesOutput is the output schema of list_modules.
type ListModulesOutput struct {
	Modules []ModuleOutput `json:"modules"`
	Count   int            `json:"count"`
}

// ModuleOutput describes one published module.
type ModuleOutput struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Version          string `json:"version"`
	Installed        bool   `json:"installed"`
	InstalledVersion string `json:"installed_version,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fetch_accounts",
		Description: "Log into a financial institution and list its accounts",
	}, s.handleFetchAccounts)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fetch_transactions",
		Description: "Log into a financial institution and list the transactions of every account",
	}, s.handleFetchTransactions)

	if s.ports.Modules != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_modules",
			Description: "List the source modules published by the repository",
		}, s.handleListModules)
	}
}

func (s *Server) handleFetchAccounts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FetchInput,
) (*mcp.CallToolResult, FetchOutput, error) {
	return s.fetch(ctx, domain.OperationAccounts, input)
}

func (s *Server) handleFetchTransactions(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FetchInput,
) (*mcp.CallToolResult, FetchOutput, error) {
	return s.fetch(ctx, domain.OperationTransactions, input)
}

// fetch runs the connector. A classified failure is a successful tool
// call carrying an error envelope, flagged as an error result.
func (s *Server) fetch(ctx context.Context, op domain.Operation, input FetchInput) (*mcp.CallToolResult, FetchOutput, error) {
	env := s.ports.Connector.Fetch(ctx, driving.FetchRequest{
		SourceID:  input.Module,
		Login:     input.Login,
		Password:  input.Password,
		Fields:    input.Fields,
		Operation: op,
	})

	out := FetchOutput{
		Values:       env.Values,
		ErrorCode:    env.ErrorCode,
		ErrorShort:   env.ErrorShort,
		ErrorContent: env.ErrorContent,
	}
	if env.IsError() {
		return &mcp.CallToolResult{IsError: true}, out, nil
	}
	return nil, out, nil
}

func (s *Server) handleListModules(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListModulesInput,
) (*mcp.CallToolResult, ListModulesOutput, error) {
	modules, err := s.ports.Modules.List(ctx)
	if err != nil {
		return nil, ListModulesOutput{}, err
	}

	output := ListModulesOutput{
		Modules: make([]ModuleOutput, len(modules)),
		Count:   len(modules),
	}
	for i, m := range modules {
		output.Modules[i] = ModuleOutput{
			ID:               m.ID,
			Name:             m.Name,
			Version:          m.Version,
			Installed:        m.Installed,
			InstalledVersion: m.InstalledVersion,
		}
	}
	return nil, output, nil
}
