package pagination

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrTextExtraction indicates the PDF text layer could not be read.
var ErrTextExtraction = errors.New("PDF text extraction failed")

// wordGap is the horizontal gap, relative to the font size, above which two
// text runs on the same row are treated as separate words.
const wordGap = 0.15

// ExtractText returns the text layer of the PDF at path, one line per text
// row, pages in order. ledongthuc/pdf has no context support, so extraction
// runs in a goroutine and the call returns early on cancellation.
func ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		text, err := extract(path)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}

func extract(path string) (text string, err error) {
	// The parser panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrTextExtraction, path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTextExtraction, err)
	}
	defer func() { _ = f.Close() }()

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		if err := writePage(&buf, page); err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrTextExtraction, i, err)
		}
	}
	return buf.String(), nil
}

// writePage writes the rows of page top to bottom. Pages whose rows cannot
// be grouped fall back to the plain content stream text.
func writePage(buf *strings.Builder, page pdf.Page) error {
	rows, err := page.GetTextByRow()
	if err != nil {
		plain, perr := page.GetPlainText(nil)
		if perr != nil {
			return errors.Join(err, perr)
		}
		buf.WriteString(plain)
		buf.WriteByte('\n')
		return nil
	}
	for _, row := range rows {
		buf.WriteString(joinRow(row.Content))
		buf.WriteByte('\n')
	}
	return nil
}

// joinRow concatenates the runs of one row, inserting a space where the
// runs are visibly apart.
func joinRow(runs pdf.TextHorizontal) string {
	var b strings.Builder
	var prev *pdf.Text
	for i := range runs {
		r := &runs[i]
		if prev != nil && gapBetween(*prev, *r) {
			b.WriteByte(' ')
		}
		b.WriteString(r.S)
		prev = r
	}
	return b.String()
}

func gapBetween(a, b pdf.Text) bool {
	if strings.HasSuffix(a.S, " ") || strings.HasPrefix(b.S, " ") {
		return false
	}
	size := a.FontSize
	if size <= 0 {
		size = 1
	}
	return b.X-(a.X+a.W) > wordGap*size
}
