package docs2pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-docs2pdf/internal/process"
)

// Renderer prints HTML documents to PDF. One Renderer serves a whole run
// and may be called from several goroutines when workers > 1.
type Renderer interface {
	// RenderCover prints a self-contained HTML page.
	RenderCover(ctx context.Context, html string, opts PageOptions) ([]byte, error)
	// RenderContent opens origin first so that root-relative stylesheets,
	// scripts and images resolve, then replaces the document with html.
	RenderContent(ctx context.Context, origin, html string, opts PageOptions) ([]byte, error)
	Close() error
}

// PageOptions describe the printed sheet.
type PageOptions struct {
	Margins        PageMargins
	HeaderTemplate string // browser print template, see assets.TemplateSet
	FooterTemplate string
}

// PageMargins are expressed in inches.
type PageMargins struct {
	Top, Right, Bottom, Left float64
}

// A4 paper in inches.
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
)

// emptyTemplate keeps Chrome from printing its default date and URL.
const emptyTemplate = "<span></span>"

var _ Renderer = (*rodRenderer)(nil)

// rodRenderer implements Renderer using go-rod.
// Rod downloads Chromium on first run if no browser is found.
type rodRenderer struct {
	launchTimeout time.Duration
	timeout       time.Duration
	log           *slog.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodRenderer(launchTimeout, renderTimeout time.Duration, logger *slog.Logger) *rodRenderer {
	return &rodRenderer{launchTimeout: launchTimeout, timeout: renderTimeout, log: logger}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser(ctx context.Context) (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	launchCtx := ctx
	if r.launchTimeout > 0 {
		var cancel context.CancelFunc
		launchCtx, cancel = context.WithTimeout(ctx, r.launchTimeout)
		defer cancel()
	}

	// Pages are injected into a live origin and load assets across mounts,
	// so the sandbox and same-origin checks are off.
	l := launcher.New().
		Context(launchCtx).
		Headless(true).
		NoSandbox(true).
		Set("disable-setuid-sandbox").
		Set("disable-web-security").
		Set("disable-dev-shm-usage")

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.log.Debug("browser launched", "pid", l.PID())

	r.launcher = l
	r.browser = browser
	return browser, nil
}

// Close releases browser resources. When the browser does not close
// cleanly its whole process group is killed.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if err != nil {
			process.KillProcessGroup(r.launcher.PID())
		}
		r.launcher.Kill()
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return err
}

// RenderCover prints html on a blank page.
func (r *rodRenderer) RenderCover(ctx context.Context, html string, opts PageOptions) ([]byte, error) {
	return r.render(ctx, "", html, opts)
}

// RenderContent prints html after navigating to origin.
func (r *rodRenderer) RenderContent(ctx context.Context, origin, html string, opts PageOptions) ([]byte, error) {
	return r.render(ctx, origin, html, opts)
}

func (r *rodRenderer) render(ctx context.Context, origin, html string, opts PageOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser(ctx)
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: origin})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx)
	if r.timeout > 0 {
		p = p.Timeout(r.timeout)
	}

	if origin != "" {
		if err := p.WaitLoad(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, origin, err)
		}
	}
	if err := p.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("%w: setting content: %v", ErrPageLoad, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// Check context after page load
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := p.PDF(buildPDFOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// buildPDFOptions constructs an A4 print request with header and footer.
func buildPDFOptions(opts PageOptions) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:          floatPtr(paperWidthInches),
		PaperHeight:         floatPtr(paperHeightInches),
		MarginTop:           floatPtr(opts.Margins.Top),
		MarginRight:         floatPtr(opts.Margins.Right),
		MarginBottom:        floatPtr(opts.Margins.Bottom),
		MarginLeft:          floatPtr(opts.Margins.Left),
		PrintBackground:     true,
		DisplayHeaderFooter: true,
		HeaderTemplate:      orEmptyTemplate(opts.HeaderTemplate),
		FooterTemplate:      orEmptyTemplate(opts.FooterTemplate),
	}
}

func orEmptyTemplate(s string) string {
	if s == "" {
		return emptyTemplate
	}
	return s
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
