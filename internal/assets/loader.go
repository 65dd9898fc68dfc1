package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

var (
	ErrStyleNotFound         = errors.New("style not found")
	ErrTemplateSetNotFound   = errors.New("template set not found")
	ErrIncompleteTemplateSet = errors.New("template set missing required template")
	ErrInvalidAssetName      = errors.New("invalid asset name")
	ErrInvalidBasePath       = errors.New("invalid base path")

	// ErrAssetRead covers any failure other than absence, including a
	// symlink leading out of the base path.
	ErrAssetRead = errors.New("failed to read asset")
)

// AssetLoader loads the print stylesheet and the page templates.
type AssetLoader interface {
	// LoadStyle returns styles/{name}.css, or ErrStyleNotFound.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet reads templates/{name}/. It returns
	// ErrTemplateSetNotFound if none of the files exist and
	// ErrIncompleteTemplateSet if a required one is missing.
	LoadTemplateSet(name string) (*TemplateSet, error)
}

// ValidateAssetName rejects names that are empty or could leave their
// directory or change extension: no separators, no dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

// fsLoader reads the asset layout from any file system. The embedded and
// on-disk loaders are both built on it.
type fsLoader struct {
	fsys fs.FS
}

func (l fsLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := fs.ReadFile(l.fsys, path.Join("styles", name+".css"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	case err != nil:
		return "", fmt.Errorf("%w: style %q: %v", ErrAssetRead, name, err)
	}
	return string(content), nil
}

func (l fsLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	return readTemplateSet(name, func(file string) ([]byte, error) {
		return fs.ReadFile(l.fsys, path.Join("templates", name, file))
	})
}

// readTemplateSet assembles a set from read, which returns the content of
// one file of the set directory.
func readTemplateSet(name string, read func(file string) ([]byte, error)) (*TemplateSet, error) {
	ts := &TemplateSet{Name: name}
	found := 0
	var missing []string

	for _, f := range ts.files() {
		content, err := read(f.file)
		switch {
		case err == nil:
			*f.dst = string(content)
			found++
		case errors.Is(err, fs.ErrNotExist):
			if f.required {
				missing = append(missing, f.file)
			}
		default:
			return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, f.file, err)
		}
	}

	if found == 0 {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, strings.Join(missing, ", "))
	}
	return ts, nil
}
