package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var ErrNotesConversion = errors.New("cover notes conversion failed")

// NotesRenderer turns the coverNotes Markdown into HTML for the cover page.
type NotesRenderer interface {
	Render(ctx context.Context, markdown string) (template.HTML, error)
}

// Private Use Area runes survive goldmark untouched and become <mark> after
// rendering.
const (
	markOpen  = "\uE000"
	markClose = "\uE001"
)

var (
	lineEndings = regexp.MustCompile(`\r\n?`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
	highlights  = regexp.MustCompile(`==(.*?)==`)
)

// GoldmarkNotes renders GFM with hard line breaks. Raw HTML in the notes is
// dropped, so the output is safe to embed unescaped.
type GoldmarkNotes struct {
	md goldmark.Markdown
}

var _ NotesRenderer = (*GoldmarkNotes)(nil)

func NewNotesRenderer() *GoldmarkNotes {
	return &GoldmarkNotes{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)}
}

// Render returns early on cancellation; goldmark itself does not take a
// context.
func (n *GoldmarkNotes) Render(ctx context.Context, markdown string) (template.HTML, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if markdown == "" {
		return "", nil
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := n.md.Convert([]byte(normalizeNotes(markdown)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrNotesConversion, err)}
			return
		}
		done <- result{html: strings.NewReplacer(markOpen, "<mark>", markClose, "</mark>").Replace(buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return template.HTML(r.html), r.err // #nosec G203 -- goldmark output without raw HTML
	}
}

// normalizeNotes fixes CRLF from YAML block scalars, marks ==highlights==
// and collapses blank runs.
func normalizeNotes(s string) string {
	s = lineEndings.ReplaceAllString(s, "\n")
	s = highlights.ReplaceAllString(s, markOpen+"$1"+markClose)
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
