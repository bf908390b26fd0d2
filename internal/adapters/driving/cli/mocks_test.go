package cli

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

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

type mockModuleService struct {
	modules    []domain.SourceModule
	listErr    error
	testErr    error
	updateErr  error
	updateRuns int
}

func (m *mockModuleService) Test(_ context.Context) error {
	return m.testErr
}

func (m *mockModuleService) UpdateAll(_ context.Context) error {
	m.updateRuns++
	return m.updateErr
}

func (m *mockModuleService) List(_ context.Context) ([]domain.SourceModule, error) {
	return m.modules, m.listErr
}

type mockSettingsService struct {
	settings *domain.Settings
	saved    *domain.Settings
	saveErr  error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	cp := *m.settings
	return &cp, nil
}

func (m *mockSettingsService) Save(s *domain.Settings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = s
	return nil
}

// withServices installs svcs for the duration of the test.
func withServices(t *testing.T, svcs *Services) {
	t.Helper()
	closed := 0
	svcs.Close = func() error {
		closed++
		return nil
	}
	SetServiceFactory(func(Options) (*Services, error) { return svcs, nil })
	t.Cleanup(func() {
		SetServiceFactory(nil)
		connectorService = nil
		moduleService = nil
		settingsService = nil
		closeServices = nil
	})
}

// resetFlags restores the flags of cmd to their defaults so that values
// from a previous execution do not leak into the next one.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}
