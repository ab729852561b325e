package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const outputPrefix = "processed_"

// Layout holds the resolved working directories for a process.
type Layout struct {
	UploadsDir string `json:"uploadsDir"`
	OutputsDir string `json:"outputsDir"`
}

// Prepare resolves both roots to absolute paths and creates them if absent.
func Prepare(uploadsDir, outputsDir string) (Layout, error) {
	uploads, err := ensureDir("uploads", uploadsDir)
	if err != nil {
		return Layout{}, err
	}
	outputs, err := ensureDir("outputs", outputsDir)
	if err != nil {
		return Layout{}, err
	}

	return Layout{UploadsDir: uploads, OutputsDir: outputs}, nil
}

// OutputPathFor returns the processed file path for an input PDF.
func (l Layout) OutputPathFor(inputPath string) string {
	return filepath.Join(l.OutputsDir, outputPrefix+filepath.Base(inputPath))
}

// ensureDir makes one directory, tolerating an existing one.
func ensureDir(label, dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("%s directory is required", label)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s directory: %w", label, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("create %s directory: %w", label, err)
	}
	return abs, nil
}
