// Package docs2pdf turns a built, versioned documentation site into PDF
// files: one per page, one per sidebar category and one per sidebar, plus a
// manifest used by the site's download menu.
//
// # Quick Start
//
// Load a configuration, create a generator and run it after the site build:
//
//	cfg, err := docs2pdf.LoadConfig("docs2pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	gen, err := docs2pdf.NewGenerator(docs2pdf.WithConfig(cfg))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := gen.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(res.Files), "PDFs in", filepath.Dir(res.Manifest))
//
// # Generation Pipeline
//
// For every documentation version and every configured sidebar:
//
//  1. The sidebar is walked bottom-up; each page and each category becomes a unit.
//  2. Each page's article is extracted from the rendered HTML and normalized.
//  3. A unit's articles are merged behind a generated table of contents.
//  4. The merged document is printed by headless Chrome (go-rod).
//  5. Page numbers are read back from the printed text and written into the
//     table of contents, then the document is printed again.
//  6. A cover page is printed and prepended (pdfcpu).
//
// The site is served on a loopback port during the run so that stylesheets,
// scripts and images resolve as they do online.
//
// # Output
//
// Files are written to <build>/pdfs/<version>/<subfolder>/<slug>.pdf. A unit
// either produces its complete PDF or nothing: intermediate files are
// removed on success and on failure. The pdfs directory is emptied at the
// start of every run.
//
// # Concurrency
//
// Units render one at a time by default. Config.Workers > 1 renders that
// many units at once against the same browser; 0 sizes the pool from
// GOMAXPROCS (see ResolvePoolSize).
//
// # Page Numbers
//
// Physical pages are found by matching the footer stamp, configured with
// footerParser, in the printed text. The stamp must appear exactly once per
// page. The text of the running header is ignored at the top of each page.
// Headings are matched in document order, so two headings with the
// same text may both resolve to the first occurrence's page.
package docs2pdf
