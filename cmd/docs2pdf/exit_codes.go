package main

import (
	"context"
	"errors"
	"os"

	docs2pdf "github.com/alnah/go-docs2pdf"
	"github.com/alnah/go-docs2pdf/internal/config"
	"github.com/alnah/go-docs2pdf/internal/hints"
	"github.com/alnah/go-docs2pdf/internal/nav"
)

// Exit codes for the docs2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0   // PDFs and manifest written
	ExitGeneral   = 1   // General/unexpected error
	ExitUsage     = 2   // Invalid flags, config, or validation
	ExitIO        = 3   // Build output missing or unreadable
	ExitBrowser   = 4   // Browser/Chrome errors
	ExitInterrupt = 130 // Interrupted by a signal
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Browser errors (exit 4)
	if errors.Is(err, docs2pdf.ErrBrowserConnect) ||
		errors.Is(err, docs2pdf.ErrPageCreate) ||
		errors.Is(err, docs2pdf.ErrPageLoad) ||
		errors.Is(err, docs2pdf.ErrPDFGeneration) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, docs2pdf.ErrBuildDirNotFound) ||
		errors.Is(err, docs2pdf.ErrMissingHTML) ||
		errors.Is(err, docs2pdf.ErrNoStylesheet) ||
		errors.Is(err, docs2pdf.ErrTextExtraction) ||
		errors.Is(err, docs2pdf.ErrMerge) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, docs2pdf.ErrInvalidFooterPattern) ||
		errors.Is(err, docs2pdf.ErrTemplateRender) ||
		errors.Is(err, docs2pdf.ErrNoSidebars) ||
		errors.Is(err, nav.ErrInvalidItem) ||
		errors.Is(err, nav.ErrUnsupportedItem) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, getenv func(string) string) string {
	switch {
	case errors.Is(err, docs2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect(getenv)
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound()
	case errors.Is(err, docs2pdf.ErrBuildDirNotFound):
		return hints.ForBuildDir("the build directory")
	case errors.Is(err, docs2pdf.ErrNoStylesheet):
		return hints.ForNoStylesheet()
	case errors.Is(err, docs2pdf.ErrMissingHTML):
		return hints.ForMissingHTML()
	case errors.Is(err, docs2pdf.ErrInvalidFooterPattern):
		return hints.ForFooterPattern()
	default:
		return ""
	}
}
