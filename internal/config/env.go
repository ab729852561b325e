package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"pdf-unwatermark/internal/domain"
)

const (
	EnvUploadsDir     = "UNWATERMARK_UPLOADS_DIR"
	EnvOutputsDir     = "UNWATERMARK_OUTPUTS_DIR"
	EnvHosts          = "UNWATERMARK_HOSTS"
	EnvMinRepeatRatio = "UNWATERMARK_MIN_REPEAT_RATIO"
)

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored and variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overlays UNWATERMARK_* variables on cfg. Setting hosts or the
// repeat ratio switches the profile to custom.
func ApplyEnv(cfg domain.Settings) (domain.Settings, error) {
	cfg.UploadsDir = envOrDefault(EnvUploadsDir, cfg.UploadsDir)
	cfg.OutputsDir = envOrDefault(EnvOutputsDir, cfg.OutputsDir)

	if value := envOrDefault(EnvHosts, ""); value != "" {
		cfg.WatermarkHosts = normalizeHosts(strings.Split(value, ","))
		cfg.Profile = CustomProfileID
	}

	if value := envOrDefault(EnvMinRepeatRatio, ""); value != "" {
		ratio, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return cfg, fmt.Errorf("parse %s: %w", EnvMinRepeatRatio, err)
		}
		if ratio <= 0 || ratio > 1 {
			return cfg, fmt.Errorf("parse %s: %v is outside (0, 1]", EnvMinRepeatRatio, ratio)
		}
		cfg.MinRepeatRatio = ratio
		cfg.Profile = CustomProfileID
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && strings.TrimSpace(val) != "" {
		return strings.TrimSpace(val)
	}
	return fallback
}
