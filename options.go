package docs2pdf

import (
	"context"
	"log/slog"
	"time"

	"github.com/alnah/go-docs2pdf/internal/config"
	"github.com/alnah/go-docs2pdf/internal/pagination"
)

// Config is the generation configuration.
type Config = config.Config

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// LoadConfig reads a YAML configuration file by path or by name.
func LoadConfig(nameOrPath string) (*Config, error) {
	return config.LoadConfig(nameOrPath)
}

// TextExtractor reads the text layer of a rendered PDF, one line per text
// row, pages in order.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// TextExtractorFunc adapts a function to TextExtractor.
type TextExtractorFunc func(ctx context.Context, path string) (string, error)

// ExtractText calls f.
func (f TextExtractorFunc) ExtractText(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// defaultTextExtractor reads PDFs with ledongthuc/pdf.
var defaultTextExtractor = TextExtractorFunc(pagination.ExtractText)

// Option configures a Generator.
type Option func(*Generator)

// WithConfig sets the configuration. DefaultConfig is used otherwise.
func WithConfig(cfg *Config) Option {
	return func(g *Generator) {
		g.cfg = cfg
	}
}

// WithLogger sets the logger. Logs are discarded otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.log = logger
	}
}

// WithRenderer replaces the headless Chrome renderer.
// The Generator closes it at the end of every Run.
func WithRenderer(r Renderer) Option {
	return func(g *Generator) {
		g.renderer = r
	}
}

// WithTextExtractor replaces the PDF text reader used to find page numbers.
func WithTextExtractor(x TextExtractor) Option {
	return func(g *Generator) {
		g.text = x
	}
}

// WithClock sets the time source for printed dates.
// Panics if now is nil (programmer error).
func WithClock(now func() time.Time) Option {
	if now == nil {
		panic("docs2pdf: WithClock requires a non-nil function")
	}
	return func(g *Generator) {
		g.now = now
	}
}
