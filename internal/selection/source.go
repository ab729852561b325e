package selection

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"pdf-unwatermark/internal/domain"
)

const pdfExtension = ".pdf"

// Source validates drop payloads and picker results into a FileSelection.
type Source struct {
	stat func(name string) (os.FileInfo, error)
}

// NewSource builds a source backed by the real filesystem.
func NewSource() *Source {
	return &Source{stat: os.Stat}
}

// NewSourceForTests builds a source with an injectable stat.
func NewSourceForTests(stat func(name string) (os.FileInfo, error)) *Source {
	return &Source{stat: stat}
}

// Accept returns a selection when refs names exactly one local PDF file.
// Anything else is rejected without side effects.
func (s *Source) Accept(refs []string) (domain.FileSelection, bool) {
	if len(refs) != 1 {
		return domain.FileSelection{}, false
	}

	path, ok := localPath(refs[0])
	if !ok {
		return domain.FileSelection{}, false
	}
	if !strings.EqualFold(filepath.Ext(path), pdfExtension) {
		return domain.FileSelection{}, false
	}

	info, err := s.stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return domain.FileSelection{}, false
	}

	return domain.FileSelection{
		Path:        path,
		DisplayName: filepath.Base(path),
	}, true
}

// localPath resolves a plain path or file:// URI to a cleaned local path.
func localPath(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil || !strings.EqualFold(u.Scheme, "file") {
			return "", false
		}
		if u.Host != "" && !strings.EqualFold(u.Host, "localhost") {
			return "", false
		}
		p := u.Path
		// file:///C:/doc.pdf
		if len(p) > 2 && p[0] == '/' && p[2] == ':' {
			p = p[1:]
		}
		ref = filepath.FromSlash(p)
		if ref == "" {
			return "", false
		}
	}

	return filepath.Clean(ref), true
}
