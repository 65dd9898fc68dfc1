package assets

import (
	"fmt"
	"os"
	"path/filepath"
)

// FilesystemLoader serves assets from the assets.basePath directory. Every
// read goes through an os.Root, so neither names nor symlinks can reach
// files outside the directory.
type FilesystemLoader struct {
	basePath string
}

// NewFilesystemLoader returns ErrInvalidBasePath unless basePath is a
// readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	defer root.Close()
	if _, err := root.Stat("."); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemLoader{basePath: abs}, nil
}

func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	var css string
	err := f.withRoot(func(l fsLoader) (err error) {
		css, err = l.LoadStyle(name)
		return err
	})
	return css, err
}

func (f *FilesystemLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	var ts *TemplateSet
	err := f.withRoot(func(l fsLoader) (err error) {
		ts, err = l.LoadTemplateSet(name)
		return err
	})
	return ts, err
}

// withRoot opens the base directory for the duration of one load.
func (f *FilesystemLoader) withRoot(load func(fsLoader) error) error {
	root, err := os.OpenRoot(f.basePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	defer root.Close()
	return load(fsLoader{root.FS()})
}

var _ AssetLoader = (*FilesystemLoader)(nil)
