package docs2pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-docs2pdf/internal/assets"
)

// templateData is exposed to cover, header and footer templates.
type templateData struct {
	ProjectName  string
	ProductTitle string // per-sidebar label of the whole-tree document
	Title        string // unit title, ancestors joined by " / "
	Tagline      string
	Version      string
	Author       string
	Date         string
	Notes        template.HTML // cover notes rendered from Markdown
}

// pageTemplates holds a parsed template set.
type pageTemplates struct {
	cover       *template.Template
	header      *template.Template
	footer      *template.Template
	coverHeader *template.Template
	coverFooter *template.Template
}

func parseTemplates(ts *assets.TemplateSet) (*pageTemplates, error) {
	var out pageTemplates
	for _, t := range []struct {
		name string
		src  string
		dst  **template.Template
	}{
		{"cover", ts.Cover, &out.cover},
		{"header", ts.Header, &out.header},
		{"footer", ts.Footer, &out.footer},
		{"cover-header", ts.CoverHeader, &out.coverHeader},
		{"cover-footer", ts.CoverFooter, &out.coverFooter},
	} {
		tpl, err := template.New(t.name).Option("missingkey=error").Parse(t.src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s template of set %q: %v", ErrTemplateRender, t.name, ts.Name, err)
		}
		*t.dst = tpl
	}
	return &out, nil
}

// renderedTemplates are the strings handed to the renderer for one unit.
type renderedTemplates struct {
	Cover       string
	Header      string
	Footer      string
	CoverHeader string
	CoverFooter string
}

func (p *pageTemplates) render(data templateData) (renderedTemplates, error) {
	var out renderedTemplates
	for _, t := range []struct {
		tpl *template.Template
		dst *string
	}{
		{p.cover, &out.Cover},
		{p.header, &out.Header},
		{p.footer, &out.Footer},
		{p.coverHeader, &out.CoverHeader},
		{p.coverFooter, &out.CoverFooter},
	} {
		var buf bytes.Buffer
		if err := t.tpl.Execute(&buf, data); err != nil {
			return renderedTemplates{}, fmt.Errorf("%w: %s: %v", ErrTemplateRender, t.tpl.Name(), err)
		}
		*t.dst = buf.String()
	}
	return out, nil
}

// browserFilled are the classes whose content the browser substitutes when
// printing header and footer templates.
const browserFilled = ".pageNumber, .totalPages, .date, .title, .url"

// printedText returns the text a rendered header or footer template prints,
// whitespace collapsed. It returns "" when the browser fills part of the
// text in, since that part cannot be known in advance.
func printedText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	if doc.Find(browserFilled).Length() > 0 {
		return ""
	}
	doc.Find("style, script").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
