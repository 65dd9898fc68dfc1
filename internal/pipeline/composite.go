package pipeline

import (
	"fmt"
	"html"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// headingSelector lists the headings that get numbers and TOC entries.
const headingSelector = "h1, h2, h3"

// nbsp separates a heading number from its text.
const nbsp = "\u00a0"

// CompositeOptions configure BuildComposite.
type CompositeOptions struct {
	IgnoreDocs              []string // excluded when more than one fragment is merged
	IgnoreSelectors         []string // CSS selectors removed from the body
	NumberHeadings          bool
	Stylesheets             []string // explicit stylesheet URLs
	Scripts                 []string // explicit script URLs
	AlwaysIncludeSiteStyles bool     // add discovered site assets next to explicit ones
	PrintCSS                string   // inlined last so it wins over site styles
	Lang                    string
}

// Composite is a printable document and its table of contents.
type Composite struct {
	HTML    string
	Entries []TOCEntry
}

// CompileSelectors validates CSS selectors.
func CompileSelectors(selectors []string) ([]cascadia.Selector, error) {
	compiled := make([]cascadia.Selector, 0, len(selectors))
	for _, s := range selectors {
		sel, err := cascadia.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("invalid selector %q: %w", s, err)
		}
		compiled = append(compiled, sel)
	}
	return compiled, nil
}

// BuildComposite merges fragments into one HTML document headed by a
// generated table of contents whose page numbers are placeholders.
func BuildComposite(title string, frags []*Fragment, opts CompositeOptions) (*Composite, error) {
	removals, err := CompileSelectors(opts.IgnoreSelectors)
	if err != nil {
		return nil, err
	}

	var body strings.Builder
	for _, f := range frags {
		if len(frags) > 1 && slices.Contains(opts.IgnoreDocs, f.DocID) {
			continue
		}
		body.WriteString(f.ArticleHTML)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + body.String() + "</body></html>"))
	if err != nil {
		return nil, fmt.Errorf("parsing merged body: %w", err)
	}
	root := doc.Find("body")

	root.Find("header").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithSelection(s.Contents())
	})
	neutralizeHashLinks(root)
	for _, sel := range removals {
		root.FindMatcher(sel).Remove()
	}

	entries := numberHeadings(root, opts.NumberHeadings)

	bodyHTML, err := root.Html()
	if err != nil {
		return nil, fmt.Errorf("rendering merged body: %w", err)
	}

	return &Composite{
		HTML:    wrapDocument(title, renderTOC(entries)+bodyHTML, frags, opts),
		Entries: entries,
	}, nil
}

// neutralizeHashLinks keeps heading anchors working but drops their glyph.
func neutralizeHashLinks(root *goquery.Selection) {
	root.Find("a.hash-link").SetText("")
	root.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == "#"
	}).SetText("")
}

// numberHeadings prefixes h1-h3 with their number, inserts a toc-target
// anchor before each and returns the matching TOC entries in document order.
func numberHeadings(root *goquery.Selection, numbered bool) []TOCEntry {
	var entries []TOCEntry
	numbering := &numberingState{}

	root.Find(headingSelector).Each(func(_ int, h *goquery.Selection) {
		text := strings.Join(strings.Fields(h.Text()), " ")
		if text == "" || h.HasClass("ignoreCounter") {
			return
		}

		level, _ := strconv.Atoi(strings.TrimPrefix(goquery.NodeName(h), "h"))
		num, depth := numbering.next(level)

		entry := TOCEntry{
			Index:  len(entries),
			Level:  depth,
			Text:   text,
			Anchor: "toc-" + strconv.Itoa(len(entries)),
			Page:   -1,
		}
		if numbered {
			entry.Number = num
			h.PrependHtml(`<span class="heading-number">` + num + `</span>` + nbsp + nbsp)
		}
		h.BeforeHtml(`<a class="toc-target" id="` + entry.Anchor + `"></a>`)
		entries = append(entries, entry)
	})
	return entries
}

// assetLists resolves the stylesheet and script URLs for the document head.
// Explicit lists win unless site assets are requested as well.
func assetLists(frags []*Fragment, opts CompositeOptions) (styles, scripts []string) {
	var siteStyles, siteScripts []string
	for _, f := range frags {
		if f.StylePath != "" && !slices.Contains(siteStyles, f.StylePath) {
			siteStyles = append(siteStyles, f.StylePath)
		}
		if f.ScriptPath != "" && !slices.Contains(siteScripts, f.ScriptPath) {
			siteScripts = append(siteScripts, f.ScriptPath)
		}
	}

	pick := func(explicit, site []string) []string {
		if len(explicit) == 0 {
			return site
		}
		if opts.AlwaysIncludeSiteStyles {
			return append(append([]string(nil), site...), explicit...)
		}
		return explicit
	}
	return pick(opts.Stylesheets, siteStyles), pick(opts.Scripts, siteScripts)
}

func wrapDocument(title, content string, frags []*Fragment, opts CompositeOptions) string {
	lang := opts.Lang
	if lang == "" {
		lang = "en"
	}
	styles, scripts := assetLists(frags, opts)

	var buf strings.Builder
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"")
	buf.WriteString(html.EscapeString(lang))
	buf.WriteString("\">\n<head>\n<meta charset=\"utf-8\">\n")
	buf.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	buf.WriteString("<meta name=\"generator\" content=\"go-docs2pdf\">\n")
	buf.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	for _, s := range styles {
		buf.WriteString(`<link rel="stylesheet" href="` + html.EscapeString(s) + "\">\n")
	}
	for _, s := range scripts {
		buf.WriteString(`<script src="` + html.EscapeString(s) + "\"></script>\n")
	}
	if opts.PrintCSS != "" {
		buf.WriteString("<style>" + sanitizeCSS(opts.PrintCSS) + "</style>\n")
	}
	buf.WriteString("</head>\n<body>\n")
	buf.WriteString(content)
	buf.WriteString("\n</body>\n</html>\n")
	return buf.String()
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
