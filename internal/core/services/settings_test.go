package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finconnect/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
)

func newTestSettingsService(store driven.ConfigStore, environ map[string]string) *SettingsService {
	s := NewSettingsService(store, domain.Settings{DataDir: "/default/data"})
	if environ == nil {
		environ = map[string]string{}
	}
	s.environ = func() map[string]string { return environ }
	return s
}

func TestSettingsService_Defaults(t *testing.T) {
	s := newTestSettingsService(memory.NewConfigStore(), nil)

	settings, err := s.Get()

	require.NoError(t, err)
	assert.Equal(t, "/default/data", settings.DataDir)
	assert.Equal(t, domain.RepositoryFile, settings.RepositoryKind)
	assert.False(t, settings.Verbose)
}

func TestSettingsService_ConfigOverridesDefaults(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		driven.ConfigDataDir:        "/srv/finconnect",
		driven.ConfigRepositoryKind: "github",
		driven.ConfigRepository:     "acme/modules@v2",
		driven.ConfigErrorsPath:     "/etc/errors.json",
		driven.ConfigVerbose:        true,
	})
	s := newTestSettingsService(store, nil)

	settings, err := s.Get()

	require.NoError(t, err)
	assert.Equal(t, "/srv/finconnect", settings.DataDir)
	assert.Equal(t, domain.RepositoryGitHub, settings.RepositoryKind)
	assert.Equal(t, "acme/modules@v2", settings.Repository)
	assert.Equal(t, "/etc/errors.json", settings.ErrorsPath)
	assert.True(t, settings.Verbose)
}

func TestSettingsService_EnvironmentWins(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		driven.ConfigRepositoryKind: "github",
		driven.ConfigRepository:     "acme/modules",
	})
	s := newTestSettingsService(store, map[string]string{
		"FINCONNECT_REPOSITORY_KIND": "http",
		"FINCONNECT_REPOSITORY":      "https://modules.example.org",
		"FINCONNECT_GITHUB_TOKEN":    "ghp_x",
		"FINCONNECT_VERBOSE":         "true",
	})

	settings, err := s.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.RepositoryHTTP, settings.RepositoryKind)
	assert.Equal(t, "https://modules.example.org", settings.Repository)
	assert.Equal(t, "ghp_x", settings.GitHubToken)
	assert.True(t, settings.Verbose)
}

func TestSettingsService_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		store   map[string]any
		environ map[string]string
	}{
		{"unknown repository kind", map[string]any{driven.ConfigRepositoryKind: "ftp"}, nil},
		{"malformed verbose", nil, map[string]string{"FINCONNECT_VERBOSE": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSettingsService(memory.NewConfigStore(tt.store), tt.environ)

			_, err := s.Get()

			assert.Error(t, err)
		})
	}
}

func TestSettingsService_RequiresDataDir(t *testing.T) {
	s := NewSettingsService(memory.NewConfigStore(), domain.Settings{})
	s.environ = func() map[string]string { return map[string]string{} }

	_, err := s.Get()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	s := newTestSettingsService(store, nil)

	err := s.Save(&domain.Settings{
		DataDir:        "/data",
		RepositoryKind: domain.RepositoryHTTP,
		Repository:     "https://modules.example.org",
	})

	require.NoError(t, err)
	assert.Equal(t, "/data", store.GetString(driven.ConfigDataDir))
	assert.Equal(t, "http", store.GetString(driven.ConfigRepositoryKind))
	_, ok := store.Get(driven.ConfigGitHubToken)
	assert.False(t, ok)

	settings, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "https://modules.example.org", settings.Repository)
}

func TestSettingsService_SaveRejectsInvalidKind(t *testing.T) {
	s := newTestSettingsService(memory.NewConfigStore(), nil)

	err := s.Save(&domain.Settings{RepositoryKind: "ftp"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
