package driving

import "github.com/custodia-labs/finconnect/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the resolved settings: config file, then environment.
	Get() (*domain.Settings, error)

	// Save persists settings to the config file.
	Save(settings *domain.Settings) error
}
