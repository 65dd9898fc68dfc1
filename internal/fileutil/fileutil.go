// Package fileutil provides file and path helpers for the PDF output tree.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrStemEmpty         = errors.New("file stem cannot be empty")
	ErrStemPathTraversal = errors.New("file stem contains path separator or null byte")
)

// Artifacts holds the per-unit file names derived from one slug.
// Every intermediate lives next to the final file so no two units collide.
type Artifacts struct {
	Cover   string // <slug>.title.pdf
	Raw     string // <slug>.content.raw.pdf (first pass)
	Content string // <slug>.content.pdf (second pass)
	HTML    string // <slug>.content.html
	Part    string // <slug>.pdf.part (merge target before rename)
	Final   string // <slug>.pdf
}

// ArtifactsFor returns the artifact paths for stem inside dir.
func ArtifactsFor(dir, stem string) (Artifacts, error) {
	if err := ValidateStem(stem); err != nil {
		return Artifacts{}, err
	}
	base := filepath.Join(dir, stem)
	return Artifacts{
		Cover:   base + ".title.pdf",
		Raw:     base + ".content.raw.pdf",
		Content: base + ".content.pdf",
		HTML:    base + ".content.html",
		Part:    base + ".pdf.part",
		Final:   base + ".pdf",
	}, nil
}

// Intermediates lists the files that must not outlive a unit.
// The debug HTML is included unless keepHTML is set.
func (a Artifacts) Intermediates(keepHTML bool) []string {
	paths := []string{a.Cover, a.Raw, a.Content, a.Part}
	if !keepHTML {
		paths = append(paths, a.HTML)
	}
	return paths
}

// ValidateStem checks that a file stem cannot escape its directory.
func ValidateStem(stem string) error {
	if stem == "" {
		return ErrStemEmpty
	}
	if strings.ContainsAny(stem, "/\\\x00") || stem == "." || stem == ".." {
		return fmt.Errorf("%w: %q", ErrStemPathTraversal, stem)
	}
	return nil
}

// RemoveFiles removes every path, ignoring files that do not exist.
// All other failures are joined into the returned error.
func RemoveFiles(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EnsureEmptyDir removes dir with its contents and recreates it empty.
func EnsureEmptyDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// WriteFileAtomic writes data to a sibling temp file and renames it over path,
// so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsURL returns true if the string looks like an absolute URL.
// Protocol-relative references ("//cdn.example.com/x.js") count as URLs.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "//")
}
