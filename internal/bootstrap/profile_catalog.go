package bootstrap

import (
	"fmt"
	"strings"

	"pdf-unwatermark/internal/config"
	"pdf-unwatermark/internal/domain"
)

// ListDetectionProfiles returns built-in detector presets, marking the
// active one.
func (a *App) ListDetectionProfiles() []domain.DetectionProfile {
	settings, err := a.Store.Load()
	if err != nil {
		a.mu.Lock()
		settings = a.Settings
		a.mu.Unlock()
	}
	return config.Profiles(settings)
}

// SelectDetectionProfile applies a preset to settings and persists it.
func (a *App) SelectDetectionProfile(profileID string) (domain.Settings, error) {
	id := strings.TrimSpace(profileID)
	if id == "" {
		return domain.Settings{}, fmt.Errorf("profile id is required")
	}
	if a.Store == nil {
		return domain.Settings{}, fmt.Errorf("settings store is not configured")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	settings, err = config.ApplyProfile(settings, id)
	if err != nil {
		return domain.Settings{}, err
	}
	return a.SaveSettings(settings)
}
