package selection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// mustWriteFile writes a fixture file.
func mustWriteFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// TestAcceptSinglePDF checks extension matching is case-insensitive.
func TestAcceptSinglePDF(t *testing.T) {
	root := t.TempDir()
	source := NewSource()

	for _, name := range []string{"report.pdf", "REPORT2.PDF", "mixed.Pdf"} {
		path := filepath.Join(root, name)
		mustWriteFile(t, path)

		got, ok := source.Accept([]string{path})
		if !ok {
			t.Fatalf("Accept(%q) rejected", name)
		}
		if got.Path != path {
			t.Fatalf("path = %q, want %q", got.Path, path)
		}
		if got.DisplayName != name {
			t.Fatalf("display name = %q, want %q", got.DisplayName, name)
		}
	}
}

// TestAcceptFileURI checks local file URIs from drop payloads.
func TestAcceptFileURI(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "slides.pdf")
	mustWriteFile(t, path)

	got, ok := NewSource().Accept([]string{"file://" + filepath.ToSlash(path)})
	if !ok {
		t.Fatal("expected file URI to be accepted")
	}
	if got.DisplayName != "slides.pdf" {
		t.Fatalf("display name = %q", got.DisplayName)
	}
}

// TestAcceptRejects covers every silently rejected payload shape.
func TestAcceptRejects(t *testing.T) {
	root := t.TempDir()
	pdfA := filepath.Join(root, "a.pdf")
	pdfB := filepath.Join(root, "b.pdf")
	text := filepath.Join(root, "notes.txt")
	dir := filepath.Join(root, "folder.pdf")
	mustWriteFile(t, pdfA)
	mustWriteFile(t, pdfB)
	mustWriteFile(t, text)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tests := []struct {
		name string
		refs []string
	}{
		{name: "zero files", refs: nil},
		{name: "multiple files", refs: []string{pdfA, pdfB}},
		{name: "non pdf", refs: []string{text}},
		{name: "missing file", refs: []string{filepath.Join(root, "missing.pdf")}},
		{name: "directory", refs: []string{dir}},
		{name: "remote url", refs: []string{"https://example.com/a.pdf"}},
		{name: "remote file host", refs: []string{"file://server/share/a.pdf"}},
		{name: "blank", refs: []string{"  "}},
		{name: "pdf suffix without dot", refs: []string{filepath.Join(root, "apdf")}},
	}

	source := NewSource()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := source.Accept(tt.refs); ok {
				t.Fatalf("Accept(%v) = %+v, want rejection", tt.refs, got)
			}
		})
	}
}

// TestAcceptStatError checks filesystem failures reject the payload.
func TestAcceptStatError(t *testing.T) {
	source := NewSourceForTests(func(string) (os.FileInfo, error) {
		return nil, errors.New("permission denied")
	})
	if _, ok := source.Accept([]string{"/docs/report.pdf"}); ok {
		t.Fatal("expected rejection on stat error")
	}
}
