package config

import (
	"os"
	"path/filepath"

	"pdf-unwatermark/internal/domain"
)

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	gamma, _ := ProfileByID(DefaultProfileID)
	return domain.Settings{
		UploadsDir:     "uploads",
		OutputsDir:     "outputs",
		Profile:        gamma.ID,
		WatermarkHosts: append([]string(nil), gamma.WatermarkHosts...),
		MinRepeatRatio: gamma.MinRepeatRatio,
	}
}

// DefaultPath is where the desktop and terminal apps keep settings.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".pdf-unwatermark", "settings.json")
}
