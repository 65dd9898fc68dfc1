package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-docs2pdf/internal/fileutil"
	"github.com/alnah/go-docs2pdf/internal/nav"
	"github.com/alnah/go-docs2pdf/internal/slug"
)

// ErrMissingHTML indicates a navigation entry without a rendered page.
var ErrMissingHTML = errors.New("rendered HTML not found")

// File-name keys for document units.
const (
	FileNamesID    = "id"
	FileNamesTitle = "title"
)

// UnitKind tells document units from category units.
type UnitKind int

const (
	UnitDoc UnitKind = iota + 1
	UnitCategory
)

func (k UnitKind) String() string {
	if k == UnitCategory {
		return "category"
	}
	return "doc"
}

// Unit is one PDF to produce: a single page, or a category covering its subtree.
type Unit struct {
	Kind       UnitKind
	Title      string // ancestor titles and own title joined by " / "
	Slug       string
	Fragments  []*Fragment
	PagePaths  []string // site paths of the pages this unit was built for
	Ancestors  []string // slugs of enclosing categories, outermost first, root excluded
	IsRoot     bool
	DocID      string // unversioned id for doc units
	LinkedPage string // site path of a category's own page, if any
}

// WalkOptions configure a Walker for one documentation version.
type WalkOptions struct {
	Version   nav.VersionInfo
	BuildDir  string
	BaseURL   string
	Origin    string
	SiteURL   string
	RootDocID string
	FileNames string // FileNamesID (default) or FileNamesTitle
	Logger    *slog.Logger
}

// Walker turns navigation trees into units. It owns the slug registry of one
// version, so every Walk on the same Walker shares collision tracking.
// A Walker is not safe for concurrent use.
type Walker struct {
	opts  WalkOptions
	slugs *slug.Registry
	log   *slog.Logger
}

// NewWalker returns a Walker with an empty slug registry.
func NewWalker(opts WalkOptions) *Walker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "/"
	}
	return &Walker{opts: opts, slugs: slug.NewRegistry(), log: logger}
}

// Walk visits root, whose label names the whole-tree document, and returns
// its units bottom-up: children always precede the category containing them,
// and the root unit, if any, comes last.
func (w *Walker) Walk(root nav.Node) ([]Unit, error) {
	if root.Kind != nav.KindCategory {
		return nil, fmt.Errorf("%w: root must be a category, got %v", nav.ErrInvalidItem, root.Kind)
	}
	res, err := w.walk(root, chain{}, true)
	if err != nil {
		return nil, err
	}
	return res.units, nil
}

// chain is the ancestor context handed down by value. The root is never part of it.
type chain struct {
	titles []string
	keys   []string
}

func (c chain) with(title, key string) chain {
	return chain{
		titles: append(append([]string(nil), c.titles...), title),
		keys:   append(append([]string(nil), c.keys...), key),
	}
}

func (c chain) title(own string) string {
	return strings.Join(append(append([]string(nil), c.titles...), own), " / ")
}

func (c chain) stem(own string) string {
	return strings.Join(append(append([]string(nil), c.keys...), own), "-")
}

type walkResult struct {
	units []Unit
	frags []*Fragment
	pages []string
}

func (w *Walker) walk(n nav.Node, anc chain, isRoot bool) (walkResult, error) {
	switch n.Kind {
	case nav.KindLink:
		return walkResult{}, nil
	case nav.KindDoc:
		return w.walkDoc(n, anc)
	case nav.KindCategory:
		return w.walkCategory(n, anc, isRoot)
	default:
		return walkResult{}, fmt.Errorf("%w: %v", nav.ErrUnknownKind, n.Kind)
	}
}

func (w *Walker) walkDoc(n nav.Node, anc chain) (walkResult, error) {
	frag, page, err := w.extract(n.ID, n.Permalink, anc)
	if err != nil {
		return walkResult{}, err
	}

	title := frag.Title
	if !frag.HasTitle {
		title = n.Label
		if title == "" {
			title = frag.DocID
		}
		frag.Title = title
		w.log.Warn("page has no h1, using navigation label", "doc", frag.DocID, "title", title)
	}

	key := strings.ReplaceAll(frag.DocID, "/", "-")
	if w.opts.FileNames == FileNamesTitle {
		key = title
	}

	unit := Unit{
		Kind:      UnitDoc,
		Title:     anc.title(title),
		Slug:      w.slugs.Slug(anc.stem(key)),
		Fragments: []*Fragment{frag},
		PagePaths: []string{page},
		DocID:     frag.DocID,
	}
	return walkResult{units: []Unit{unit}, frags: unit.Fragments, pages: unit.PagePaths}, nil
}

func (w *Walker) walkCategory(n nav.Node, anc chain, isRoot bool) (walkResult, error) {
	var res walkResult
	var linkedPage string

	if n.LinkedDocID != "" {
		frag, page, err := w.extract(n.LinkedDocID, "", anc)
		if err != nil {
			return walkResult{}, err
		}
		if !frag.HasTitle {
			frag.Title = n.Label
		}
		res.frags = append(res.frags, frag)
		res.pages = append(res.pages, page)
		linkedPage = page
	}

	inner := anc
	if !isRoot {
		inner = anc.with(n.Label, n.Label)
	}
	for _, child := range n.Items {
		sub, err := w.walk(child, inner, false)
		if err != nil {
			return walkResult{}, err
		}
		res.units = append(res.units, sub.units...)
		res.frags = append(res.frags, sub.frags...)
		res.pages = append(res.pages, sub.pages...)
	}

	if len(res.frags) == 0 {
		w.log.Debug("skipping empty category", "category", n.Label)
		return res, nil
	}

	unit := Unit{
		Kind:       UnitCategory,
		Fragments:  res.frags,
		PagePaths:  res.pages,
		IsRoot:     isRoot,
		LinkedPage: linkedPage,
	}
	if isRoot {
		unit.Title = n.Label
		unit.Slug = w.slugs.Slug(n.Label)
	} else {
		unit.Title = anc.title(n.Label)
		unit.Slug = w.slugs.Slug(anc.stem(n.Label))
		for i := range res.units {
			res.units[i].Ancestors = append([]string{unit.Slug}, res.units[i].Ancestors...)
		}
	}
	res.units = append(res.units, unit)
	return res, nil
}

// extract reads and normalizes the page of docID.
func (w *Walker) extract(docID, permalink string, anc chain) (*Fragment, string, error) {
	v := w.opts.Version
	id := v.UnversionedID(docID)

	path, page := w.locate(id, permalink)
	if path == "" {
		return nil, "", fmt.Errorf("%w: %s (doc %q, version %q)", ErrMissingHTML, page, docID, v.Label)
	}

	raw, err := os.ReadFile(path) // #nosec G304 -- path is inside the build directory
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMissingHTML, err)
	}
	w.log.Debug("extracting page", "doc", id, "file", path)

	frag, err := ExtractFragment(id, string(raw), ExtractOptions{
		Origin:       w.opts.Origin,
		ParentTitles: anc.titles,
		Links: LinkOptions{
			SiteURL:     w.opts.SiteURL,
			BaseURL:     w.opts.BaseURL,
			VersionPath: v.URLPath,
		},
	})
	if err != nil {
		return nil, "", err
	}
	if !frag.HasArticle {
		w.log.Warn("page has no article element", "doc", id, "file", path)
	}
	return frag, page, nil
}

// locate returns the rendered file of a doc and its site path. The file is
// empty when no candidate exists; page is still returned for error messages.
func (w *Walker) locate(id, permalink string) (file, page string) {
	v := w.opts.Version
	base := "/" + strings.Trim(w.opts.BaseURL, "/")
	if base != "/" {
		base += "/"
	}

	var candidates []string
	switch {
	case permalink != "":
		page = permalink
		rel := strings.TrimPrefix(strings.TrimPrefix(permalink, base), "/")
		dir := filepath.Join(w.opts.BuildDir, filepath.FromSlash(rel))
		candidates = []string{filepath.Join(dir, "index.html"), dir + ".html"}
	case id == w.opts.RootDocID:
		page = base + "docs/" + v.PathPrefix()
		candidates = []string{filepath.Join(v.HTMLDir, "index.html")}
	default:
		page = base + "docs/" + v.PathPrefix() + id
		dir := filepath.Join(v.HTMLDir, filepath.FromSlash(id))
		candidates = []string{filepath.Join(dir, "index.html"), dir + ".html"}
	}

	for _, c := range candidates {
		if fileutil.FileExists(c) {
			return c, page
		}
	}
	return "", page
}
