package driving

import "github.com/custodia-labs/pagelens/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves current settings, applying defaults for unset keys.
	Get() (*domain.Settings, error)

	// Set stores a single key after validating it.
	Set(key, value string) error

	// Keys returns every configurable key with its current resolved value.
	Keys() (map[string]string, error)

	// Validate checks the current settings for consistency.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
