package docs2pdf

import (
	"context"
	"fmt"
	"os"

	"github.com/alnah/go-docs2pdf/internal/fileutil"
	"github.com/alnah/go-docs2pdf/internal/pagination"
	"github.com/alnah/go-docs2pdf/internal/pipeline"
)

// renderUnit runs the two-pass cycle for one unit and returns the final
// PDF path: build the composite, print it, read page numbers back from the
// printed text, print again with the numbers filled in, then prepend the
// cover. Intermediates are removed whatever the outcome.
func (g *Generator) renderUnit(ctx context.Context, rs runState, job unitJob) (final string, err error) {
	u := job.unit
	log := rs.log.With("version", job.version.Label, "sidebar", job.sidebar, "unit", u.Slug)

	art, err := fileutil.ArtifactsFor(job.dir, u.Slug)
	if err != nil {
		return "", err
	}
	defer func() {
		if rmErr := fileutil.RemoveFiles(art.Intermediates(g.cfg.KeepDebugHTMLs)...); rmErr != nil {
			log.Warn("removing intermediate files", "error", rmErr)
		}
		if err != nil {
			_ = fileutil.RemoveFiles(art.Final)
		}
	}()

	log.Info("creating PDF", "file", art.Final, "kind", u.Kind, "pages", len(u.Fragments))

	comp, err := pipeline.BuildComposite(u.Title, u.Fragments, g.composite)
	if err != nil {
		return "", fmt.Errorf("unit %s: %w", u.Slug, err)
	}

	tpl, err := g.templates.render(templateData{
		ProjectName:  g.cfg.Site.ProjectName,
		ProductTitle: job.product,
		Title:        u.Title,
		Tagline:      g.cfg.Site.Tagline,
		Version:      g.versionLabel(job),
		Author:       g.cfg.Author,
		Date:         rs.date,
		Notes:        rs.notes,
	})
	if err != nil {
		return "", err
	}
	content := PageOptions{Margins: g.contentMargins, HeaderTemplate: tpl.Header, FooterTemplate: tpl.Footer}
	cover := PageOptions{Margins: g.coverMargins, HeaderTemplate: tpl.CoverHeader, FooterTemplate: tpl.CoverFooter}

	// Pass 1: measure.
	if err := g.print(ctx, rs.site, comp.HTML, content, art.Raw); err != nil {
		return "", fmt.Errorf("unit %s: %w", u.Slug, err)
	}
	text, err := g.readText(ctx, art.Raw)
	if err != nil {
		return "", fmt.Errorf("unit %s: %w", u.Slug, err)
	}

	res := pagination.Reconcile(g.footer, comp.Entries, text, comp.HTML, pagination.Options{
		Numbered: g.cfg.NumberHeadings,
		Offset:   g.cfg.PageNumberOffset,
		Header:   printedText(tpl.Header),
	})
	log.Debug("table of contents reconciled", "pages", res.Pages, "entries", len(res.Entries), "unresolved", res.Unresolved)
	if len(res.Entries) > 0 && !g.footer.MatchString(text) {
		log.Warn("footer pattern matched no page; check footerParser against the footer template")
	}
	if res.Unresolved > 0 {
		log.Warn("table of contents entries without page number", "unresolved", res.Unresolved)
	}

	// Pass 2: final.
	if err := g.print(ctx, rs.site, res.HTML, content, art.Content); err != nil {
		return "", fmt.Errorf("unit %s: %w", u.Slug, err)
	}
	if g.cfg.KeepDebugHTMLs {
		if err := os.WriteFile(art.HTML, []byte(res.HTML), 0o600); err != nil {
			log.Warn("writing debug HTML", "file", art.HTML, "error", err)
		}
	}

	coverPDF, err := g.renderer.RenderCover(ctx, tpl.Cover, cover)
	if err != nil {
		return "", fmt.Errorf("unit %s cover: %w", u.Slug, err)
	}
	if err := os.WriteFile(art.Cover, coverPDF, 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", art.Cover, err)
	}

	if err := assemble(ctx, g.merger, art); err != nil {
		return "", fmt.Errorf("unit %s: %w", u.Slug, err)
	}

	if n, err := g.merger.PageCount(art.Final); err == nil {
		log.Debug("PDF written", "file", art.Final, "pages", n)
	}
	return art.Final, nil
}

// print renders html against the site and writes the PDF to dst.
func (g *Generator) print(ctx context.Context, site, html string, opts PageOptions, dst string) error {
	pdf, err := g.renderer.RenderContent(ctx, site, html, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, pdf, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}

// readText extracts the text layer of path within the PDF read timeout.
func (g *Generator) readText(ctx context.Context, path string) (string, error) {
	if d := g.cfg.Timeouts.PDFRead; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return g.text.ExtractText(ctx, path)
}

// versionLabel is the version printed on covers and footers.
func (g *Generator) versionLabel(job unitJob) string {
	if g.cfg.ProductVersion != "" {
		return g.cfg.ProductVersion
	}
	return job.version.Label
}
