// Package outcome classifies terminal results for presentation and exposes
// the open-output-folder action.
package outcome

import (
	"fmt"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"pdf-unwatermark/internal/domain"
)

// Category selects how a terminal result is presented.
type Category string

const (
	CategoryPlainSuccess Category = "plain_success"
	CategorySoftSuccess  Category = "soft_success"
	CategoryError        Category = "error"
)

// OpenFolderLabel is the caption of the secondary action.
const OpenFolderLabel = "Open Output Folder"

// Presentation describes a classified terminal result.
type Presentation struct {
	Category           Category        `json:"category"`
	Severity           domain.Severity `json:"severity"`
	Message            string          `json:"message"`
	HasSecondaryAction bool            `json:"hasSecondaryAction"`
	OutputDir          string          `json:"outputDir,omitempty"`
}

// Classify maps a result to its presentation from structured fields only.
func Classify(result domain.ProcessingResult) Presentation {
	switch {
	case !result.OK:
		return Presentation{
			Category: CategoryError,
			Severity: domain.SeverityError,
			Message:  result.Message,
		}
	case !result.WatermarksRemoved:
		return Presentation{
			Category: CategorySoftSuccess,
			Severity: domain.SeveritySoftSuccess,
			Message:  result.Message,
		}
	default:
		p := Presentation{
			Category: CategoryPlainSuccess,
			Severity: domain.SeveritySuccess,
			Message:  result.Message,
		}
		if dir := outputDir(result.OutputPath); dir != "" {
			p.HasSecondaryAction = true
			p.OutputDir = dir
		}
		return p
	}
}

// outputDir returns the absolute directory containing path.
func outputDir(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	dir := filepath.Dir(path)
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// Opener opens directories in the platform file manager.
type Opener struct {
	goos  string
	start func(cmd *exec.Cmd) error
}

// NewOpener builds an opener for the host OS.
func NewOpener() *Opener {
	return &Opener{
		goos:  goruntime.GOOS,
		start: func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// NewOpenerForTests builds an opener with an injectable OS and launcher.
func NewOpenerForTests(goos string, start func(cmd *exec.Cmd) error) *Opener {
	return &Opener{goos: goos, start: start}
}

// OpenDirectory launches the platform file explorer for dir.
func (o *Opener) OpenDirectory(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("output path is empty")
	}

	name := FileManagerCommand(o.goos)
	if o.goos == "windows" {
		dir = filepath.Clean(dir)
	}
	cmd := exec.Command(name, dir)

	if err := o.start(cmd); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}

// FileManagerCommand names the launcher used to open folders on goos.
func FileManagerCommand(goos string) string {
	switch goos {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}
