package diagnostics

import (
	"fmt"
	"os"
	"os/exec"
	goruntime "runtime"
	"strings"
	"time"

	"github.com/samber/lo"

	"pdf-unwatermark/internal/config"
	"pdf-unwatermark/internal/domain"
	"pdf-unwatermark/internal/outcome"
)

// Item IDs reported by Run.
const (
	ItemUploadsDir     = "uploads_dir"
	ItemOutputsDir     = "outputs_dir"
	ItemWatermarkHosts = "watermark_hosts"
	ItemFileManager    = "file_manager"
)

// Checker validates workspace directories, detector settings and the
// folder launcher.
type Checker struct {
	goos       string
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		goos:       goruntime.GOOS,
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkWritableDir(ItemUploadsDir, "Uploads directory", settings.UploadsDir),
		c.checkWritableDir(ItemOutputsDir, "Outputs directory", settings.OutputsDir),
		c.checkWatermarkHosts(settings),
		c.checkFileManager(),
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: lo.SomeBy(items, func(item domain.DiagnosticItem) bool {
			return item.Status == domain.DiagnosticStatusFail
		}),
		Items: items,
	}
}

// checkWritableDir validates directory existence and write access.
func (c *Checker) checkWritableDir(id, name, dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{ID: id, Name: name, Fixable: true}

	if strings.TrimSpace(dir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("%s is empty.", name)
		item.Hint = "Set a directory in settings or use Fix to restore the default."
		return item
	}

	if info, err := c.stat(dir); err == nil && !info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Path is not a directory: %s", dir)
		item.Hint = "Move the file away or choose another directory."
		return item
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create directory: %s", dir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Directory is not writable: %s", dir)
		item.Hint = "Choose a writable directory for PDF files."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}

// checkWatermarkHosts verifies the detector has hosts to match links with.
func (c *Checker) checkWatermarkHosts(settings domain.Settings) domain.DiagnosticItem {
	item := domain.DiagnosticItem{ID: ItemWatermarkHosts, Name: "Watermark hosts", Fixable: true}

	hosts := lo.Compact(lo.Map(settings.WatermarkHosts, func(h string, _ int) string { return strings.TrimSpace(h) }))
	if len(hosts) == 0 {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "No watermark hosts configured; only repeated images will be detected."
		item.Hint = "Select a detection profile or use Fix to restore the Gamma profile."
		return item
	}

	label := settings.Profile
	if profile, found := config.ProfileByID(settings.Profile); found {
		label = profile.Name
	}
	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("%s profile: %s", label, strings.Join(hosts, ", "))
	return item
}

// checkFileManager verifies the folder launcher used after a run is on PATH.
func (c *Checker) checkFileManager() domain.DiagnosticItem {
	name := outcome.FileManagerCommand(c.goos)
	item := domain.DiagnosticItem{ID: ItemFileManager, Name: name, Fixable: c.goos == "linux"}

	path, err := c.lookPath(name)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Tool not found in PATH: %s", name)
		item.Hint = "Install it to use Open Output Folder. Processing still works without it."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	goos string,
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		goos:       goos,
		lookPath:   lookPath,
		stat:       stat,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}

