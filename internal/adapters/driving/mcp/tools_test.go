package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

func TestServer_handleFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns values", func(t *testing.T) {
		accounts := []domain.Account{{AccountNumber: "A1", Label: "Checking", Balance: "1.00"}}
		connector := &mockConnector{envelope: domain.AccountsResult(accounts)}
		server, err := NewServer(&Ports{Connector: connector}, "test")
		require.NoError(t, err)

		input := FetchInput{
			Module:   "demo",
			Login:    "alice",
			Password: "secret",
			Fields:   []domain.CustomField{{Name: "website", Value: "pro"}},
		}
		res, output, err := server.handleFetchAccounts(ctx, nil, input)

		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Equal(t, accounts, output.Values)
		assert.Empty(t, output.ErrorCode)

		require.Len(t, connector.requests, 1)
		req := connector.requests[0]
		assert.Equal(t, "alice", req.Login)
		assert.Equal(t, "secret", req.Password)
		assert.Equal(t, input.Fields, req.Fields)
	})

	t.Run("error envelope flags the result", func(t *testing.T) {
		connector := &mockConnector{envelope: domain.ResultEnvelope{
			ErrorCode:    "GENERIC_EXCEPTION",
			ErrorShort:   "boom",
			ErrorContent: "boom\ntrace",
		}}
		server, err := NewServer(&Ports{Connector: connector}, "test")
		require.NoError(t, err)

		res, output, err := server.handleFetchTransactions(ctx, nil, FetchInput{Module: "demo"})

		require.NoError(t, err)
		require.NotNil(t, res)
		assert.True(t, res.IsError)
		assert.Equal(t, "GENERIC_EXCEPTION", output.ErrorCode)
		assert.Equal(t, "boom", output.ErrorShort)
		assert.Equal(t, domain.OperationTransactions, connector.requests[0].Operation)
	})
}

func TestServer_handleListModules(t *testing.T) {
	ctx := context.Background()

	t.Run("returns modules", func(t *testing.T) {
		modules := &mockModuleService{modules: []domain.SourceModule{
			{ID: "demo", Name: "Demo", Version: "2", Installed: true, InstalledVersion: "1"},
			{ID: "examplebank", Name: "Example Bank", Version: "1"},
		}}
		server, err := NewServer(&Ports{Connector: &mockConnector{}, Modules: modules}, "test")
		require.NoError(t, err)

		_, output, err := server.handleListModules(ctx, nil, ListModulesInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, ModuleOutput{ID: "demo", Name: "Demo", Version: "2", Installed: true, InstalledVersion: "1"}, output.Modules[0])
		assert.False(t, output.Modules[1].Installed)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		modules := &mockModuleService{err: errors.New("repository unavailable")}
		server, err := NewServer(&Ports{Connector: &mockConnector{}, Modules: modules}, "test")
		require.NoError(t, err)

		_, _, err = server.handleListModules(ctx, nil, ListModulesInput{})

		assert.ErrorContains(t, err, "repository unavailable")
	})
}
