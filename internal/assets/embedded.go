package assets

import "embed"

//go:embed styles templates
var embedded embed.FS

// EmbeddedLoader serves the assets compiled into the binary.
type EmbeddedLoader struct {
	fsLoader
}

func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsLoader{embedded}}
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
