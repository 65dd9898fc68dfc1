package docs2pdf

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-docs2pdf/internal/assets"
	"github.com/alnah/go-docs2pdf/internal/dateutil"
	"github.com/alnah/go-docs2pdf/internal/fileutil"
	"github.com/alnah/go-docs2pdf/internal/nav"
	"github.com/alnah/go-docs2pdf/internal/pagination"
	"github.com/alnah/go-docs2pdf/internal/pipeline"
	"github.com/alnah/go-docs2pdf/internal/server"
)

// Output locations inside the build directory.
const (
	PDFDirName       = "pdfs"
	ManifestFileName = "manifest.json"
)

// buildMarkers must exist in a finished site build.
var buildMarkers = []string{"index.html", "404.html"}

// defaultShutdownTimeout bounds teardown when no server timeout is set.
const defaultShutdownTimeout = 10 * time.Second

// Generator turns a built documentation site into PDF files.
// A Generator may be reused for several runs but not concurrently.
type Generator struct {
	cfg      *Config
	log      *slog.Logger
	renderer Renderer
	text     TextExtractor
	merger   merger
	now      func() time.Time
	notes    pipeline.NotesRenderer

	templates      *pageTemplates
	footer         *regexp.Regexp
	composite      pipeline.CompositeOptions
	contentMargins PageMargins
	coverMargins   PageMargins
}

// Result summarizes a finished run.
type Result struct {
	RunID    string
	Files    []string // final PDFs, sorted
	Manifest string
	Versions []string // labels of the versions that produced files
}

// NewGenerator validates the configuration and loads the print assets.
// The browser is launched lazily by the first render.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		text: defaultTextExtractor,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.cfg == nil {
		g.cfg = DefaultConfig()
	}
	cfg := g.cfg

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bundle, err := assets.Load(cfg.Assets.BasePath)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}
	g.log.Debug("print assets loaded", "custom", bundle.Custom, "basePath", cfg.Assets.BasePath)
	if g.templates, err = parseTemplates(bundle.Templates); err != nil {
		return nil, err
	}

	if g.footer, err = footerPattern(cfg); err != nil {
		return nil, err
	}

	content, err := cfg.Margins.Inches()
	if err != nil {
		return nil, fmt.Errorf("margins: %w", err)
	}
	cover, err := cfg.CoverMargins.Inches()
	if err != nil {
		return nil, fmt.Errorf("coverMargins: %w", err)
	}
	g.contentMargins = PageMargins(content)
	g.coverMargins = PageMargins(cover)

	g.composite = pipeline.CompositeOptions{
		IgnoreDocs:              cfg.IgnoreDocs,
		IgnoreSelectors:         cfg.IgnoreCSSSelectors,
		NumberHeadings:          cfg.NumberHeadings,
		Stylesheets:             cfg.Stylesheets,
		Scripts:                 cfg.Scripts,
		AlwaysIncludeSiteStyles: cfg.AlwaysIncludeSiteStyles,
		PrintCSS:                bundle.PrintCSS,
	}

	if g.notes == nil {
		g.notes = pipeline.NewNotesRenderer()
	}
	if g.merger == nil {
		g.merger = newPDFCPUMerger()
	}
	if g.renderer == nil {
		g.renderer = newRodRenderer(cfg.Timeouts.Browser, cfg.Timeouts.Render, g.log)
	}
	return g, nil
}

// footerPattern returns the configured footer pattern, or the one matching
// the default footer template.
func footerPattern(cfg *Config) (*regexp.Regexp, error) {
	if cfg.FooterParser != "" {
		return pagination.CompileFooter(cfg.FooterParser)
	}
	return pagination.DefaultFooterPattern(cfg.Author, cfg.DateFormat)
}

// runState is shared by every unit of one run.
type runState struct {
	log   *slog.Logger
	site  string // address opened before content is injected
	date  string
	notes template.HTML
}

// unitJob binds a unit to its version and output directory.
type unitJob struct {
	unit    pipeline.Unit
	version nav.VersionInfo
	sidebar string
	product string
	dir     string // output directory on disk
	urlDir  string // same directory as served, with trailing slash
}

// Run generates every PDF and the manifest. The pdfs directory is emptied
// first. The local server and the browser are torn down on every return
// path, including recovered panics.
func (g *Generator) Run(ctx context.Context) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	start := time.Now()
	runID := uuid.NewString()
	log := g.log.With("run", runID)
	cfg := g.cfg

	buildDir := cfg.BuildPath()
	if err := checkBuildDir(buildDir); err != nil {
		return nil, err
	}

	pdfDir := filepath.Join(buildDir, PDFDirName)
	if err := fileutil.EnsureEmptyDir(pdfDir); err != nil {
		return nil, fmt.Errorf("preparing %s: %w", pdfDir, err)
	}
	log.Debug("cleaned output directory", "dir", pdfDir)

	versions, err := nav.DiscoverVersions(cfg.Site.Dir, buildDir, cfg.Navigation)
	if err != nil {
		return nil, err
	}
	versions = nav.FilterVersions(versions, cfg.Versions)

	date, err := dateutil.Format(cfg.DateFormat, g.now())
	if err != nil {
		return nil, err
	}
	notes, err := g.notes.Render(ctx, cfg.CoverNotes)
	if err != nil {
		return nil, fmt.Errorf("cover notes: %w", err)
	}

	srv, err := server.Start(ctx, server.Config{
		BuildDir:     buildDir,
		BaseURL:      cfg.Site.BaseURL,
		Mounts:       mounts(cfg),
		StartTimeout: cfg.Timeouts.Server,
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerStart, err)
	}
	defer func() {
		if tdErr := g.teardown(ctx, srv); tdErr != nil {
			err = errors.Join(err, tdErr)
		}
	}()
	log.Info("serving site", "address", srv.SiteAddress())

	rs := runState{
		log:   log,
		site:  srv.SiteAddress(),
		date:  date,
		notes: notes,
	}

	result := &Result{RunID: runID, Manifest: filepath.Join(pdfDir, ManifestFileName)}
	man := newManifest(cfg)

	for _, v := range versions {
		log.Info("processing version", "version", v.Label)

		jobs, err := g.plan(rs, v, srv.Origin(), buildDir, pdfDir)
		if err != nil {
			return nil, err
		}
		if len(jobs) == 0 {
			continue
		}

		files, err := g.renderAll(ctx, rs, jobs)
		if err != nil {
			return nil, err
		}
		man.add(jobs)
		result.Files = append(result.Files, files...)
		result.Versions = append(result.Versions, v.Label)
	}

	if len(result.Files) == 0 {
		return nil, fmt.Errorf("%w: sidebars %v in %d version(s)", ErrNoSidebars, []string(cfg.SidebarNames), len(versions))
	}
	slices.Sort(result.Files)

	if err := man.write(result.Manifest); err != nil {
		return nil, err
	}

	log.Info("generation finished", "files", len(result.Files), "elapsed", time.Since(start).Round(time.Millisecond))
	return result, nil
}

// teardown closes the browser, then the server.
func (g *Generator) teardown(ctx context.Context, srv *server.Server) error {
	timeout := g.cfg.Timeouts.Server
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var errs []error
	if err := g.renderer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing browser: %w", err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("stopping server: %w", err))
	}
	return errors.Join(errs...)
}

// checkBuildDir requires the marker files of a finished site build.
func checkBuildDir(dir string) error {
	if !fileutil.DirExists(dir) {
		return fmt.Errorf("%w: %s", ErrBuildDirNotFound, dir)
	}
	for _, m := range buildMarkers {
		if !fileutil.FileExists(filepath.Join(dir, m)) {
			return fmt.Errorf("%w: %s has no %s", ErrBuildDirNotFound, dir, m)
		}
	}
	return nil
}

func mounts(cfg *Config) []server.Mount {
	out := make([]server.Mount, 0, len(cfg.UseExtraPaths))
	for _, p := range cfg.UseExtraPaths {
		local := p.LocalPath
		if !filepath.IsAbs(local) {
			local = filepath.Join(cfg.Site.Dir, local)
		}
		out = append(out, server.Mount{ServerPath: p.ServerPath, LocalPath: local})
	}
	return out
}

// plan walks every configured sidebar of v. Missing sidebars are skipped.
func (g *Generator) plan(rs runState, v nav.VersionInfo, origin, buildDir, pdfDir string) ([]unitJob, error) {
	cfg := g.cfg
	log := rs.log.With("version", v.Label)

	sidebars, err := v.LoadSidebars()
	if errors.Is(err, nav.ErrNoSidebarFile) {
		log.Warn("no sidebar file, skipping version")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// One walker per version: slugs are unique within a version.
	walker := pipeline.NewWalker(pipeline.WalkOptions{
		Version:   v,
		BuildDir:  buildDir,
		BaseURL:   cfg.Site.BaseURL,
		Origin:    origin,
		SiteURL:   cfg.Site.URL,
		RootDocID: cfg.RootDocFor(v.Label),
		FileNames: cfg.FileNames,
		Logger:    log,
	})

	var jobs []unitJob
	listed := make(map[string]bool)
	for i, name := range cfg.SidebarNames {
		items, ok := v.Lookup(sidebars, name)
		if !ok {
			log.Warn("sidebar not found, skipping", "sidebar", name, "available", sidebars.Names())
			continue
		}

		product := g.productTitle(i, name)
		tree := nav.Category(product, items...)
		for _, id := range tree.DocIDs() {
			listed[v.UnversionedID(id)] = true
		}
		units, err := walker.Walk(tree)
		if err != nil {
			return nil, fmt.Errorf("version %s, sidebar %s: %w", v.Label, name, err)
		}

		sub := cfg.Subfolders.At(i)
		dir := filepath.Join(pdfDir, filepath.FromSlash(v.URLPath), filepath.FromSlash(sub))
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
		urlDir := path.Join("/", cfg.Site.BaseURL, PDFDirName, v.URLPath, sub) + "/"

		log.Debug("sidebar walked", "sidebar", name, "units", len(units))
		for _, u := range units {
			jobs = append(jobs, unitJob{
				unit:    u,
				version: v,
				sidebar: name,
				product: product,
				dir:     dir,
				urlDir:  urlDir,
			})
		}
	}

	if len(jobs) > 0 {
		for _, id := range cfg.IgnoreDocs {
			if !listed[id] {
				log.Warn("ignoreDocs entry matches no page", "doc", id)
			}
		}
	}
	return jobs, nil
}

// productTitle labels the whole-tree document of sidebar i.
func (g *Generator) productTitle(i int, sidebar string) string {
	if t := g.cfg.ProductTitles.At(i); t != "" {
		return t
	}
	if g.cfg.Site.ProjectName != "" {
		return g.cfg.Site.ProjectName
	}
	return sidebar
}

// renderAll renders jobs, at most workers at a time. With one worker each
// unit, cleanup included, completes before the next starts.
func (g *Generator) renderAll(ctx context.Context, rs runState, jobs []unitJob) ([]string, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(ResolvePoolSize(g.cfg.Workers))

	var mu sync.Mutex
	files := make([]string, 0, len(jobs))

	for _, job := range jobs {
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("internal error in unit %s: %v", job.unit.Slug, r)
				}
			}()
			if err := egCtx.Err(); err != nil {
				return err
			}

			final, err := g.renderUnit(egCtx, rs, job)
			if err != nil {
				return err
			}
			mu.Lock()
			files = append(files, final)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
