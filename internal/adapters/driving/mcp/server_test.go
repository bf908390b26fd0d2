package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

func TestNewServer(t *testing.T) {
	t.Run("nil connector returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{}, "test")
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingConnector)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Connector: &mockConnector{}}, "test")
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("connector only is valid", func(t *testing.T) {
		ports := &Ports{Connector: &mockConnector{}}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{Connector: &mockConnector{}, Modules: &mockModuleService{}}
		assert.NoError(t, ports.Validate())
	})
}

// connect starts the server on an in-memory transport and returns a client session.
func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientSession.Close() })
	return clientSession
}

func TestServer_ListsTools(t *testing.T) {
	s, err := NewServer(&Ports{Connector: &mockConnector{}, Modules: &mockModuleService{}}, "test")
	require.NoError(t, err)

	res, err := connect(t, s).ListTools(context.Background(), &mcp.ListToolsParams{})

	require.NoError(t, err)
	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"fetch_accounts", "fetch_transactions", "list_modules"}, names)
}

func TestServer_CallFetchAccounts(t *testing.T) {
	connector := &mockConnector{envelope: domain.ResultEnvelope{ErrorCode: "INVALID_PASSWORD"}}
	s, err := NewServer(&Ports{Connector: connector}, "test")
	require.NoError(t, err)

	res, err := connect(t, s).CallTool(context.Background(), &mcp.CallToolParams{
		Name: "fetch_accounts",
		Arguments: map[string]any{
			"module":   "demo",
			"login":    "alice",
			"password": "wrong",
		},
	})

	require.NoError(t, err)
	assert.True(t, res.IsError)
	require.Len(t, connector.requests, 1)
	assert.Equal(t, "demo", connector.requests[0].SourceID)
	assert.Equal(t, domain.OperationAccounts, connector.requests[0].Operation)
}
