package docs2pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-docs2pdf/internal/pipeline"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type renderCall struct {
	html string
	opts PageOptions
}

// fakeRenderer echoes the HTML it is given as the "PDF".
type fakeRenderer struct {
	mu      sync.Mutex
	content []renderCall
	covers  []renderCall
	closed  int
	// hook runs before every content render; a non-nil error fails it.
	hook func(html string) error
}

func (f *fakeRenderer) RenderContent(ctx context.Context, _ string, html string, opts PageOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.hook != nil {
		if err := f.hook(html); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = append(f.content, renderCall{html, opts})
	return []byte(html), nil
}

func (f *fakeRenderer) RenderCover(ctx context.Context, html string, opts PageOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.covers = append(f.covers, renderCall{html, opts})
	return []byte(html), nil
}

func (f *fakeRenderer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

// contentFor returns the content renders of the unit titled title.
func (f *fakeRenderer) contentFor(title string) []renderCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []renderCall
	for _, c := range f.content {
		if strings.Contains(c.html, "<title>"+title+"</title>") {
			out = append(out, c)
		}
	}
	return out
}

// fakeMerger concatenates its inputs.
type fakeMerger struct{}

func (fakeMerger) Merge(ctx context.Context, out string, in ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf []byte
	for _, p := range in {
		data, err := os.ReadFile(p)
		if err != nil {
			return errors.Join(ErrMerge, err)
		}
		buf = append(buf, data...)
	}
	return os.WriteFile(out, buf, 0o600)
}

func (fakeMerger) PageCount(string) (int, error) { return 1, nil }

// lockedBuffer collects log output written from several goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

const stampDate = "2026-10-19"

func stamp(page, total string) string {
	return "\u00a9 Jane Doe " + stampDate + " Page " + page + " / " + total + "\n"
}

// fakeText is the text layer of a three-page document: contents, Intro, Setup.
var fakeText = TextExtractorFunc(func(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "Contents\n" + stamp("1", "3") +
		"1\u00a0\u00a0Intro\nhello\n" + stamp("2", "3") +
		"2\u00a0\u00a0Setup\n" + stamp("3", "3"), nil
})

// ---------------------------------------------------------------------------
// Site fixture
// ---------------------------------------------------------------------------

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func docPage(title string) string {
	return `<html><head><link rel="stylesheet" href="/assets/css/styles.1.css"></head>` +
		`<body><article><h1>` + title + `</h1><p>hello</p></article></body></html>`
}

// writeSite creates a built site holding intro and setup under docsDir.
func writeSite(t *testing.T, sidebars string) string {
	t.Helper()
	site := t.TempDir()
	build := filepath.Join(site, "build")
	writeFile(t, build, "index.html", "<html></html>")
	writeFile(t, build, "404.html", "<html></html>")
	writeFile(t, build, "assets/css/styles.1.css", "body {}")
	writeFile(t, build, "docs/intro/index.html", docPage("Intro"))
	writeFile(t, build, "docs/setup/index.html", docPage("Setup"))
	writeFile(t, site, "sidebars.json", sidebars)
	return site
}

func testConfig(site string) *Config {
	cfg := DefaultConfig()
	cfg.Site.Dir = site
	cfg.Site.ProjectName = "Handbook"
	cfg.Site.URL = "https://docs.example.com"
	cfg.Author = "Jane Doe"
	cfg.ProductTitles = []string{"Guide"}
	return cfg
}

func newTestGenerator(t *testing.T, cfg *Config, r *fakeRenderer) *Generator {
	t.Helper()
	g, err := NewGenerator(
		WithConfig(cfg),
		WithRenderer(r),
		WithTextExtractor(fakeText),
		WithClock(func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, err)
	g.merger = fakeMerger{}
	return g
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func readManifest(t *testing.T, path string) Manifest {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

const guideSidebars = `{"docs": ["intro", "setup"]}`

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestGenerator_Run_GuideScenario(t *testing.T) {
	t.Parallel()

	site := writeSite(t, guideSidebars)
	r := &fakeRenderer{}
	g := newTestGenerator(t, testConfig(site), r)

	res, err := g.Run(context.Background())
	require.NoError(t, err)

	pdfDir := filepath.Join(site, "build", PDFDirName)
	assert.Equal(t, []string{
		filepath.Join(pdfDir, "guide.pdf"),
		filepath.Join(pdfDir, "intro.pdf"),
		filepath.Join(pdfDir, "setup.pdf"),
	}, res.Files)
	assert.Equal(t, []string{"next"}, res.Versions)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"guide.pdf", "intro.pdf", ManifestFileName, "setup.pdf"}, listDir(t, pdfDir),
		"only final files remain")

	m := readManifest(t, res.Manifest)
	assert.Equal(t, ManifestEntry{Dir: "/pdfs/", File: "intro.pdf", Sections: []string{}, Root: "guide.pdf"}, m.Pages["/docs/intro"])
	assert.Equal(t, "setup.pdf", m.Pages["/docs/setup"].File)
	assert.Equal(t, Button{Enabled: true, Label: "Download as PDF", ScriptURL: DefaultConfig().JQueryURL}, m.Button)

	assert.Len(t, r.content, 6, "two passes per unit")
	assert.Len(t, r.covers, 3)
	assert.Equal(t, 1, r.closed, "browser closed at teardown")

	guide := r.contentFor("Guide")
	require.Len(t, guide, 2)
	assert.Contains(t, guide[0].html, pipeline.PageNumberMarker(0, "_"), "first pass carries placeholders")
	assert.Contains(t, guide[1].html, pipeline.PageNumberMarker(0, "2"))
	assert.Contains(t, guide[1].html, pipeline.PageNumberMarker(1, "3"))
	assert.Contains(t, guide[1].opts.HeaderTemplate, "Guide")
	assert.Contains(t, guide[1].opts.FooterTemplate, "Jane Doe")
	assert.Contains(t, guide[1].opts.FooterTemplate, stampDate)
	assert.InDelta(t, 5/2.54, guide[1].opts.Margins.Top, 1e-9)

	final, err := os.ReadFile(filepath.Join(pdfDir, "intro.pdf"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(final), "<!DOCTYPE html>"), "cover comes first")
	assert.Contains(t, string(final), "<h1>Handbook</h1>")
	assert.Contains(t, string(final), pipeline.PageNumberMarker(0, "2"), "content follows the cover")
}

func TestGenerator_Run_NestedCategoryAndSubfolder(t *testing.T) {
	t.Parallel()

	site := writeSite(t, `{"docs": [
		"intro",
		{"type": "category", "label": "Setup", "items": [
			"setup",
			{"type": "link", "href": "https://example.com", "label": "Elsewhere"}
		]}
	]}`)
	cfg := testConfig(site)
	cfg.ProductTitles = nil
	cfg.Subfolders = []string{"manual"}
	r := &fakeRenderer{}

	res, err := newTestGenerator(t, cfg, r).Run(context.Background())
	require.NoError(t, err)

	dir := filepath.Join(site, "build", PDFDirName, "manual")
	assert.Equal(t, []string{"handbook.pdf", "intro.pdf", "setup-setup.pdf", "setup.pdf"}, listDir(t, dir))
	assert.Len(t, res.Files, 4)

	m := readManifest(t, res.Manifest)
	assert.Equal(t, ManifestEntry{
		Dir:      "/pdfs/manual/",
		File:     "setup-setup.pdf",
		Sections: []string{"setup.pdf"},
		Root:     "handbook.pdf",
	}, m.Pages["/docs/setup"])

	setup := r.contentFor("Setup / Setup")
	require.NotEmpty(t, setup, "doc titles carry their ancestors")
	assert.Contains(t, setup[0].html, "Setup / Setup", "h1 prefixed with the category")
}

func TestGenerator_Run_Versions(t *testing.T) {
	t.Parallel()

	site := writeSite(t, guideSidebars)
	build := filepath.Join(site, "build")
	writeFile(t, build, "docs/next/intro/index.html", docPage("Intro"))
	writeFile(t, build, "docs/next/setup/index.html", docPage("Setup"))
	writeFile(t, site, "versions.json", `["1.0"]`)
	writeFile(t, site, "versioned_sidebars/version-1.0-sidebars.json",
		`{"version-1.0/docs": ["version-1.0/intro"]}`)

	tests := []struct {
		name      string
		versions  []string
		wantFiles []string
	}{
		{
			name:     "all versions",
			versions: nil,
			wantFiles: []string{
				filepath.Join("guide.pdf"),
				filepath.Join("intro.pdf"),
				filepath.Join("next", "guide.pdf"),
				filepath.Join("next", "intro.pdf"),
				filepath.Join("next", "setup.pdf"),
			},
		},
		{
			name:      "filtered",
			versions:  []string{"1.0"},
			wantFiles: []string{"guide.pdf", "intro.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Runs share the build directory.
			cfg := testConfig(site)
			cfg.Versions = tt.versions

			res, err := newTestGenerator(t, cfg, &fakeRenderer{}).Run(context.Background())
			require.NoError(t, err)

			pdfDir := filepath.Join(build, PDFDirName)
			var got []string
			for _, f := range res.Files {
				rel, err := filepath.Rel(pdfDir, f)
				require.NoError(t, err)
				got = append(got, rel)
			}
			slices.Sort(got)
			assert.Equal(t, tt.wantFiles, got)

			m := readManifest(t, res.Manifest)
			assert.Equal(t, "/pdfs/", m.Pages["/docs/intro"].Dir)
			if tt.versions == nil {
				assert.Equal(t, "/pdfs/next/", m.Pages["/docs/next/intro"].Dir)
			}
		})
	}
}

func TestGenerator_Run_FailedUnitLeavesNoFiles(t *testing.T) {
	t.Parallel()

	site := writeSite(t, guideSidebars)
	r := &fakeRenderer{hook: func(html string) error {
		if strings.Contains(html, "<title>Setup</title>") {
			return errors.Join(ErrPDFGeneration, errors.New("browser crashed"))
		}
		return nil
	}}

	_, err := newTestGenerator(t, testConfig(site), r).Run(context.Background())
	require.ErrorIs(t, err, ErrPDFGeneration)

	pdfDir := filepath.Join(site, "build", PDFDirName)
	assert.Equal(t, []string{"intro.pdf"}, listDir(t, pdfDir), "no intermediates, no manifest, no partial unit")
	assert.Equal(t, 1, r.closed)
}

func TestGenerator_Run_Cancelled(t *testing.T) {
	t.Parallel()

	site := writeSite(t, guideSidebars)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &fakeRenderer{hook: func(string) error {
		cancel()
		return nil
	}}

	_, err := newTestGenerator(t, testConfig(site), r).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, r.closed)
	assert.Empty(t, listDir(t, filepath.Join(site, "build", PDFDirName)))
}

func TestGenerator_Run_KeepDebugHTML(t *testing.T) {
	t.Parallel()

	site := writeSite(t, guideSidebars)
	cfg := testConfig(site)
	cfg.KeepDebugHTMLs = true

	_, err := newTestGenerator(t, cfg, &fakeRenderer{}).Run(context.Background())
	require.NoError(t, err)

	debug, err := os.ReadFile(filepath.Join(site, "build", PDFDirName, "guide.content.html"))
	require.NoError(t, err)
	assert.Contains(t, string(debug), pipeline.PageNumberMarker(1, "3"), "debug HTML is the reconciled document")
}

func TestGenerator_Run_Workers(t *testing.T) {
	t.Parallel()

	site := writeSite(t, guideSidebars)
	cfg := testConfig(site)
	cfg.Workers = 3
	r := &fakeRenderer{}

	res, err := newTestGenerator(t, cfg, r).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Files, 3)
	assert.Len(t, r.content, 6)
}

func TestGenerator_Run_Idempotent(t *testing.T) {
	t.Parallel()

	site := writeSite(t, guideSidebars)
	cfg := testConfig(site)
	origin := regexp.MustCompile(`http://127\.0\.0\.1:\d+`)

	snapshot := func() map[string]string {
		res, err := newTestGenerator(t, cfg, &fakeRenderer{}).Run(context.Background())
		require.NoError(t, err)
		out := make(map[string]string)
		for _, f := range append(res.Files, res.Manifest) {
			data, err := os.ReadFile(f)
			require.NoError(t, err)
			out[filepath.Base(f)] = origin.ReplaceAllString(string(data), "ORIGIN")
		}
		return out
	}

	first := snapshot()
	assert.Equal(t, first, snapshot())
}

func TestGenerator_Run_SidebarSelection(t *testing.T) {
	t.Parallel()

	t.Run("missing sidebar is skipped", func(t *testing.T) {
		t.Parallel()
		site := writeSite(t, guideSidebars)
		cfg := testConfig(site)
		cfg.SidebarNames = []string{"api", "docs"}
		cfg.ProductTitles = []string{"API", "Guide"}

		res, err := newTestGenerator(t, cfg, &fakeRenderer{}).Run(context.Background())
		require.NoError(t, err)
		assert.Len(t, res.Files, 3)
	})

	t.Run("warnings name what is missing", func(t *testing.T) {
		t.Parallel()
		site := writeSite(t, guideSidebars)
		cfg := testConfig(site)
		cfg.SidebarNames = []string{"api", "docs"}
		cfg.ProductTitles = []string{"API", "Guide"}
		cfg.IgnoreDocs = []string{"intro", "ghost"}

		var logs lockedBuffer
		g := newTestGenerator(t, cfg, &fakeRenderer{})
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))(g)

		_, err := g.Run(context.Background())
		require.NoError(t, err)

		out := logs.String()
		assert.Contains(t, out, `msg="sidebar not found, skipping"`)
		assert.Contains(t, out, "sidebar=api available=[docs]")
		assert.Contains(t, out, `msg="ignoreDocs entry matches no page"`)
		assert.Contains(t, out, "doc=ghost")
		assert.NotContains(t, out, "doc=intro")
	})

	t.Run("no sidebar at all", func(t *testing.T) {
		t.Parallel()
		site := writeSite(t, guideSidebars)
		cfg := testConfig(site)
		cfg.SidebarNames = []string{"api"}

		_, err := newTestGenerator(t, cfg, &fakeRenderer{}).Run(context.Background())
		assert.ErrorIs(t, err, ErrNoSidebars)
	})
}

func TestGenerator_Run_FatalInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T, site string)
		wantErr error
	}{
		{
			name: "no build directory",
			setup: func(t *testing.T, site string) {
				require.NoError(t, os.RemoveAll(filepath.Join(site, "build")))
			},
			wantErr: ErrBuildDirNotFound,
		},
		{
			name: "incomplete build",
			setup: func(t *testing.T, site string) {
				require.NoError(t, os.Remove(filepath.Join(site, "build", "404.html")))
			},
			wantErr: ErrBuildDirNotFound,
		},
		{
			name: "page without stylesheet",
			setup: func(t *testing.T, site string) {
				writeFile(t, filepath.Join(site, "build"), "docs/setup/index.html", "<article><h1>Setup</h1></article>")
			},
			wantErr: ErrNoStylesheet,
		},
		{
			name: "page not built",
			setup: func(t *testing.T, site string) {
				require.NoError(t, os.RemoveAll(filepath.Join(site, "build", "docs", "setup")))
			},
			wantErr: ErrMissingHTML,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			site := writeSite(t, guideSidebars)
			tt.setup(t, site)

			_, err := newTestGenerator(t, testConfig(site), &fakeRenderer{}).Run(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewGenerator_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.FooterParser = "("

	_, err := NewGenerator(WithConfig(cfg), WithRenderer(&fakeRenderer{}))
	assert.ErrorIs(t, err, ErrInvalidFooterPattern)
}

func TestWithClock_NilPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { WithClock(nil) })
}
