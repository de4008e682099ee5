package driving

import "github.com/custodia-labs/persona-digest/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	// Unset keys fall back to defaults.
	Get() (*domain.AppSettings, error)

	// Set parses and stores a single setting by its dotted key.
	Set(key, value string) error

	// Keys returns the dotted keys Set accepts.
	Keys() []string

	// Validate checks if current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
