package mcp

import (
	"context"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driving"
)

// mockConnector records requests and returns a fixed envelope.
type mockConnector struct {
	envelope domain.ResultEnvelope
	requests []driving.FetchRequest
}

func (m *mockConnector) Fetch(_ context.Context, req driving.FetchRequest) domain.ResultEnvelope {
	m.requests = append(m.requests, req)
	return m.envelope
}

// mockModuleService is a mock implementation of driving.ModuleService.
type mockModuleService struct {
	modules []domain.SourceModule
	err     error
}

func (m *mockModuleService) Test(_ context.Context) error {
	return m.err
}

func (m *mockModuleService) UpdateAll(_ context.Context) error {
	return m.err
}

func (m *mockModuleService) List(_ context.Context) ([]domain.SourceModule, error) {
	return m.modules, m.err
}
