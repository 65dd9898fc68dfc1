package docs2pdf

import (
	"errors"

	"github.com/alnah/go-docs2pdf/internal/pagination"
	"github.com/alnah/go-docs2pdf/internal/pipeline"
)

// Sentinel errors for generation runs. All of them abort the run.
var (
	ErrBuildDirNotFound = errors.New("site build output not found")
	ErrServerStart      = errors.New("failed to start local server")
	ErrBrowserConnect   = errors.New("failed to connect to browser")
	ErrPageCreate       = errors.New("failed to create browser page")
	ErrPageLoad         = errors.New("failed to load page")
	ErrPDFGeneration    = errors.New("PDF generation failed")
	ErrMerge            = errors.New("PDF merge failed")
	ErrTemplateRender   = errors.New("template rendering failed")
	ErrNoSidebars       = errors.New("no sidebar produced any unit")

	// Re-exported from internal packages so callers can match them.
	ErrNoStylesheet         = pipeline.ErrNoStylesheet
	ErrMissingHTML          = pipeline.ErrMissingHTML
	ErrInvalidFooterPattern = pagination.ErrInvalidFooterPattern
	ErrTextExtraction       = pagination.ErrTextExtraction
)
