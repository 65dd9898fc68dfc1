package docs2pdf

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/alnah/go-docs2pdf/internal/fileutil"
)

// merger concatenates PDF files in order into out.
type merger interface {
	Merge(ctx context.Context, out string, in ...string) error
	PageCount(path string) (int, error)
}

var _ merger = (*pdfcpuMerger)(nil)

// pdfcpuMerger merges with pdfcpu. pdfcpu has no context support, so the
// context is only checked before merging; the merge itself is short.
//
// pdfcpu records the running command in the configuration it is given, so
// every call gets its own and one merger serves all workers.
type pdfcpuMerger struct{}

var disableConfigDir sync.Once

func newPDFCPUMerger() *pdfcpuMerger {
	// pdfcpu writes a config directory under the user's home otherwise.
	disableConfigDir.Do(api.DisableConfigDir)
	return &pdfcpuMerger{}
}

func (m *pdfcpuMerger) config() *model.Configuration {
	return model.NewDefaultConfiguration()
}

// Merge writes the pages of every input, in order, to out.
func (m *pdfcpuMerger) Merge(ctx context.Context, out string, in ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := api.MergeCreateFile(in, out, false, m.config()); err != nil {
		return fmt.Errorf("%w: %v", ErrMerge, err)
	}
	return nil
}

// PageCount returns the number of pages of path.
func (m *pdfcpuMerger) PageCount(path string) (int, error) {
	return api.PageCountFile(path)
}

// assemble merges cover then content into a.Part and renames it to a.Final,
// so the final file either exists complete or not at all.
func assemble(ctx context.Context, m merger, a fileutil.Artifacts) error {
	if err := m.Merge(ctx, a.Part, a.Cover, a.Content); err != nil {
		return err
	}
	if err := os.Rename(a.Part, a.Final); err != nil {
		return fmt.Errorf("%w: %v", ErrMerge, err)
	}
	return nil
}
