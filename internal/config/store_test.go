package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"pdf-unwatermark/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.Profile != DefaultProfileID {
		t.Fatalf("profile = %q, want %q", cfg.Profile, DefaultProfileID)
	}
	if cfg.UploadsDir == "" || cfg.OutputsDir == "" {
		t.Fatalf("expected workspace dirs, got %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.WatermarkHosts, []string{"gamma.app"}) {
		t.Fatalf("hosts = %v", cfg.WatermarkHosts)
	}
	if cfg.MinRepeatRatio != 1 {
		t.Fatalf("ratio = %v, want 1", cfg.MinRepeatRatio)
	}
}

// TestDefaultSettingsDoesNotShareCatalog guards against aliasing.
func TestDefaultSettingsDoesNotShareCatalog(t *testing.T) {
	cfg := DefaultSettings()
	cfg.WatermarkHosts[0] = "changed"
	if DefaultSettings().WatermarkHosts[0] != "gamma.app" {
		t.Fatal("defaults alias the profile catalog")
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, DefaultSettings()) {
		t.Fatalf("settings = %+v, want defaults", got)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := domain.Settings{
		UploadsDir:     "/in",
		OutputsDir:     "/out",
		Profile:        CustomProfileID,
		WatermarkHosts: []string{"gamma.app", "example.com"},
		MinRepeatRatio: 0.5,
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreLoadInvalidJSON checks parse error handling.
func TestJSONStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected json parse error")
	}
}

// TestNormalizeFillsBlanks checks partial files are completed.
func TestNormalizeFillsBlanks(t *testing.T) {
	got := Normalize(domain.Settings{
		OutputsDir:     "  /out  ",
		WatermarkHosts: []string{" Gamma.App", "", "gamma.app"},
		MinRepeatRatio: 3,
	})
	want := domain.Settings{
		UploadsDir:     "uploads",
		OutputsDir:     "/out",
		Profile:        CustomProfileID,
		WatermarkHosts: []string{"gamma.app"},
		MinRepeatRatio: 1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}
