package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	goruntime "runtime"
	"strings"
	"time"

	"github.com/samber/lo"

	"pdf-unwatermark/internal/config"
	"pdf-unwatermark/internal/diagnostics"
	"pdf-unwatermark/internal/domain"
	"pdf-unwatermark/internal/outcome"
)

const (
	installCommandTimeout = 5 * time.Minute
	fileManagerPackage    = "xdg-utils"
	maxCommandOutput      = 500
)

// packageManager installs one package, optionally refreshing its index first.
type packageManager struct {
	name    string
	refresh []string
	install []string
}

// linuxPackageManagers is tried in order; the first available one that
// installs the package wins.
var linuxPackageManagers = []packageManager{
	{name: "apt-get", refresh: []string{"apt-get", "update"}, install: []string{"apt-get", "install", "-y"}},
	{name: "dnf", install: []string{"dnf", "install", "-y"}},
	{name: "pacman", install: []string{"pacman", "-Sy", "--noconfirm"}},
	{name: "zypper", install: []string{"zypper", "--non-interactive", "install"}},
}

func (m packageManager) commands(pkg string) [][]string {
	install := append(append([]string{}, m.install...), pkg)
	if len(m.refresh) == 0 {
		return [][]string{install}
	}
	return [][]string{m.refresh, install}
}

// InstallOrFixDiagnostic applies a remediation for one failed diagnostic item.
func (a *App) InstallOrFixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	if a.Store == nil {
		return domain.DiagnosticReport{}, fmt.Errorf("settings store is not configured")
	}

	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	settingsChanged := false
	var fixErr error

	switch id {
	case diagnostics.ItemUploadsDir:
		settings.UploadsDir, settingsChanged, fixErr = fixDirectory(settings.UploadsDir, config.DefaultSettings().UploadsDir)
	case diagnostics.ItemOutputsDir:
		settings.OutputsDir, settingsChanged, fixErr = fixDirectory(settings.OutputsDir, config.DefaultSettings().OutputsDir)
	case diagnostics.ItemWatermarkHosts:
		settings, fixErr = config.ApplyProfile(settings, config.DefaultProfileID)
		settingsChanged = fixErr == nil
	case diagnostics.ItemFileManager:
		fixErr = installFileManagerForCurrentOS()
	default:
		return domain.DiagnosticReport{}, fmt.Errorf("unsupported diagnostic item id: %s", id)
	}

	if settingsChanged {
		if saveErr := a.Store.Save(settings); saveErr != nil {
			report := a.refreshDiagnosticsFromSettings(settings)
			return report, fmt.Errorf("save settings after fix: %w", saveErr)
		}
	}

	if applyErr := a.applySettings(settings); applyErr != nil && fixErr == nil {
		fixErr = applyErr
	}

	report := a.GetDiagnostics()
	if fixErr != nil {
		return report, fixErr
	}
	return report, nil
}

func (a *App) refreshDiagnosticsFromSettings(settings domain.Settings) domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Settings = settings
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(settings)
	}
	return a.Diagnostics
}

// fixDirectory restores an empty directory setting and creates the directory.
func fixDirectory(dir, fallback string) (string, bool, error) {
	dir = strings.TrimSpace(dir)
	changed := false
	if dir == "" {
		dir = fallback
		changed = true
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dir, changed, fmt.Errorf("create directory %s: %w", dir, err)
	}
	return dir, changed, nil
}

// installFileManagerForCurrentOS installs xdg-utils where the launcher is
// not part of the base system.
func installFileManagerForCurrentOS() error {
	launcher := outcome.FileManagerCommand(goruntime.GOOS)
	if goruntime.GOOS == "darwin" || goruntime.GOOS == "windows" {
		if commandAvailable(launcher) {
			return nil
		}
		return fmt.Errorf("%s ships with %s and cannot be installed separately", launcher, goruntime.GOOS)
	}

	if err := installPackage(linuxPackageManagers, fileManagerPackage); err != nil {
		return fmt.Errorf("install %s: %w", fileManagerPackage, err)
	}
	if !commandAvailable(launcher) {
		return fmt.Errorf("%s is still missing from PATH after installing %s", launcher, fileManagerPackage)
	}
	return nil
}

// installPackage tries each available manager until one succeeds.
func installPackage(managers []packageManager, pkg string) error {
	available := lo.Filter(managers, func(m packageManager, _ int) bool { return commandAvailable(m.name) })
	if len(available) == 0 {
		return fmt.Errorf("no supported package manager found on %s", goruntime.GOOS)
	}

	var failures []string
	for _, manager := range available {
		err := runAll(manager.commands(pkg))
		if err == nil {
			return nil
		}
		failures = append(failures, fmt.Sprintf("%s: %v", manager.name, err))
	}
	return errors.New(strings.Join(failures, "; "))
}

func runAll(commands [][]string) error {
	for _, command := range commands {
		if err := runElevated(command); err != nil {
			return err
		}
	}
	return nil
}

// runElevated runs command as is, then through pkexec and sudo -n on linux.
func runElevated(command []string) error {
	if len(command) == 0 {
		return errors.New("empty command")
	}

	attempts := [][]string{command}
	if goruntime.GOOS == "linux" {
		for _, prefix := range [][]string{{"pkexec"}, {"sudo", "-n"}} {
			if commandAvailable(prefix[0]) {
				attempts = append(attempts, append(append([]string{}, prefix...), command...))
			}
		}
	}

	var failures []string
	for _, attempt := range attempts {
		err := runCommand(attempt[0], attempt[1:]...)
		if err == nil {
			return nil
		}
		failures = append(failures, err.Error())
	}
	return errors.New(strings.Join(failures, "; "))
}

func runCommand(name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), installCommandTimeout)
	defer cancel()

	line := strings.Join(append([]string{name}, args...), " ")
	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	switch {
	case err == nil:
		return nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%s timed out after %s", line, installCommandTimeout)
	}

	detail := strings.TrimSpace(string(output))
	if detail == "" {
		return fmt.Errorf("%s: %w", line, err)
	}
	if len(detail) > maxCommandOutput {
		detail = detail[:maxCommandOutput] + "..."
	}
	return fmt.Errorf("%s: %w (%s)", line, err, detail)
}

func commandAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
