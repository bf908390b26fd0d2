package services

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
)

// SettingsService resolves application settings from the config file,
// built-in defaults and FINCONNECT_* environment variables, in increasing
// order of precedence.
type SettingsService struct {
	configStore driven.ConfigStore
	defaults    domain.Settings
	environ     func() map[string]string
}

// NewSettingsService creates a settings service.
func NewSettingsService(configStore driven.ConfigStore, defaults domain.Settings) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		defaults:    defaults,
		environ:     func() map[string]string { return env.ToMap(os.Environ()) },
	}
}

// Get returns the resolved settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := s.defaults

	if s.configStore != nil {
		settings.DataDir = s.getString(driven.ConfigDataDir, settings.DataDir)
		settings.RepositoryKind = domain.RepositoryKind(s.getString(driven.ConfigRepositoryKind, string(settings.RepositoryKind)))
		settings.Repository = s.getString(driven.ConfigRepository, settings.Repository)
		settings.GitHubToken = s.getString(driven.ConfigGitHubToken, settings.GitHubToken)
		settings.ErrorsPath = s.getString(driven.ConfigErrorsPath, settings.ErrorsPath)
		if _, ok := s.configStore.Get(driven.ConfigVerbose); ok {
			settings.Verbose = s.configStore.GetBool(driven.ConfigVerbose)
		}
	}

	opts := env.Options{Environment: s.environ()}
	if err := env.ParseWithOptions(&settings, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if settings.RepositoryKind == "" {
		settings.RepositoryKind = domain.RepositoryFile
	}
	if !settings.RepositoryKind.IsValid() {
		return nil, fmt.Errorf("%w: repository kind %q", domain.ErrInvalidInput, settings.RepositoryKind)
	}
	if settings.DataDir == "" {
		return nil, fmt.Errorf("%w: data directory not configured", domain.ErrInvalidInput)
	}

	return &settings, nil
}

// Save persists the file-backed settings. Values coming from the
// environment are not distinguished and are written as resolved.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if s.configStore == nil {
		return fmt.Errorf("config store not configured")
	}
	if !settings.RepositoryKind.IsValid() {
		return fmt.Errorf("%w: repository kind %q", domain.ErrInvalidInput, settings.RepositoryKind)
	}

	values := []struct {
		key   string
		value any
	}{
		{driven.ConfigDataDir, settings.DataDir},
		{driven.ConfigRepositoryKind, string(settings.RepositoryKind)},
		{driven.ConfigRepository, settings.Repository},
		{driven.ConfigErrorsPath, settings.ErrorsPath},
		{driven.ConfigVerbose, settings.Verbose},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.GitHubToken != "" {
		if err := s.configStore.Set(driven.ConfigGitHubToken, settings.GitHubToken); err != nil {
			return fmt.Errorf("save %s: %w", driven.ConfigGitHubToken, err)
		}
	}
	return nil
}

func (s *SettingsService) getString(key, fallback string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}
