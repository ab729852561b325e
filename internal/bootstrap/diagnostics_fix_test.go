package bootstrap

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"pdf-unwatermark/internal/diagnostics"
	"pdf-unwatermark/internal/domain"
)

// TestFixDirectoryCreatesDirectory ensures the fix creates missing directories.
func TestFixDirectoryCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "outputs")

	fixed, changed, err := fixDirectory(dir, "outputs")
	if err != nil {
		t.Fatalf("fix directory: %v", err)
	}
	if changed {
		t.Fatal("expected setting to remain unchanged")
	}
	if fixed != dir {
		t.Fatalf("dir = %s, want %s", fixed, dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("stat dir: %v", err)
	}
}

// TestFixDirectoryRestoresFallback ensures blank settings get the default.
func TestFixDirectoryRestoresFallback(t *testing.T) {
	fallback := filepath.Join(t.TempDir(), "uploads")

	fixed, changed, err := fixDirectory("   ", fallback)
	if err != nil {
		t.Fatalf("fix directory: %v", err)
	}
	if !changed || fixed != fallback {
		t.Fatalf("fixed = %q changed = %v", fixed, changed)
	}
}

// TestInstallOrFixDiagnosticRestoresHosts checks the hosts fix persists the Gamma profile.
func TestInstallOrFixDiagnosticRestoresHosts(t *testing.T) {
	app := newTestApp(t, nil)
	app.store.settings.WatermarkHosts = nil
	app.store.settings.Profile = "custom"

	report, err := app.InstallOrFixDiagnostic(diagnostics.ItemWatermarkHosts)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if app.store.saves != 1 {
		t.Fatalf("saves = %d, want 1", app.store.saves)
	}
	if !reflect.DeepEqual(app.store.settings.WatermarkHosts, []string{"gamma.app"}) || app.store.settings.Profile != "gamma" {
		t.Fatalf("settings = %+v", app.store.settings)
	}
	assertDiagnosticStatus(t, report, diagnostics.ItemWatermarkHosts, domain.DiagnosticStatusPass)
	if len(app.engine.applied) != 1 {
		t.Fatalf("engine applied %d times, want 1", len(app.engine.applied))
	}
}

// TestInstallOrFixDiagnosticCreatesOutputs checks the directory fix.
func TestInstallOrFixDiagnosticCreatesOutputs(t *testing.T) {
	app := newTestApp(t, nil)

	report, err := app.InstallOrFixDiagnostic(diagnostics.ItemOutputsDir)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if app.store.saves != 0 {
		t.Fatalf("saves = %d, want 0", app.store.saves)
	}
	if _, err := os.Stat(app.store.settings.OutputsDir); err != nil {
		t.Fatalf("stat outputs: %v", err)
	}
	assertDiagnosticStatus(t, report, diagnostics.ItemOutputsDir, domain.DiagnosticStatusPass)
}

// TestInstallOrFixDiagnosticRejectsUnknownID validates input checks.
func TestInstallOrFixDiagnosticRejectsUnknownID(t *testing.T) {
	app := newTestApp(t, nil)
	for _, id := range []string{"", "  ", "tool_ghostscript"} {
		if _, err := app.InstallOrFixDiagnostic(id); err == nil {
			t.Fatalf("expected error for %q", id)
		}
	}
}

// TestPackageManagerCommands checks refresh ordering and the package argument.
func TestPackageManagerCommands(t *testing.T) {
	tests := map[string][][]string{
		"apt-get": {{"apt-get", "update"}, {"apt-get", "install", "-y", "xdg-utils"}},
		"dnf":     {{"dnf", "install", "-y", "xdg-utils"}},
		"pacman":  {{"pacman", "-Sy", "--noconfirm", "xdg-utils"}},
		"zypper":  {{"zypper", "--non-interactive", "install", "xdg-utils"}},
	}
	if len(linuxPackageManagers) != len(tests) {
		t.Fatalf("managers = %d, want %d", len(linuxPackageManagers), len(tests))
	}
	for _, manager := range linuxPackageManagers {
		want, ok := tests[manager.name]
		if !ok {
			t.Fatalf("unexpected manager %s", manager.name)
		}
		if got := manager.commands(fileManagerPackage); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s commands = %v, want %v", manager.name, got, want)
		}
	}

	// commands must not alias the shared install prefix.
	first := linuxPackageManagers[1].commands("a")
	_ = linuxPackageManagers[1].commands("b")
	if first[0][len(first[0])-1] != "a" {
		t.Fatalf("install slice aliased: %v", first)
	}
}

func TestRunElevatedRejectsEmptyCommand(t *testing.T) {
	if err := runElevated(nil); err == nil {
		t.Fatal("expected error for empty command")
	}
}

// assertDiagnosticStatus checks status for one diagnostic item by ID.
func assertDiagnosticStatus(t *testing.T, report domain.DiagnosticReport, id string, want domain.DiagnosticStatus) {
	t.Helper()
	for _, item := range report.Items {
		if item.ID == id {
			if item.Status != want {
				t.Fatalf("item %s: got %s, want %s (%s)", id, item.Status, want, item.Message)
			}
			return
		}
	}
	t.Fatalf("diagnostic item not found: %s", id)
}
