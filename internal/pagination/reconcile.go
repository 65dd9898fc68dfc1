package pagination

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-docs2pdf/internal/dateutil"
	"github.com/alnah/go-docs2pdf/internal/pipeline"
)

// ErrInvalidFooterPattern indicates a footer pattern that cannot split pages.
var ErrInvalidFooterPattern = errors.New("invalid footer pattern")

// DefaultOffset converts a page segment index to the printed page number.
// Text rows are read top to bottom, so segment 0 is the body of page 1.
const DefaultOffset = 1

// space matches ordinary and Unicode spaces, including the non-breaking
// spaces that follow heading numbers.
const space = `[\s\p{Zs}]`

// Options tune Reconcile.
type Options struct {
	// Numbered selects the numbered heading patterns. Unnumbered documents
	// fall back to matching the bare heading text on its own line.
	Numbered bool
	// Offset is added to the segment index to get the printed page number.
	Offset int
	// Header is the visible text of the running page header. It is removed
	// from the top of every page so that a header repeating a heading's
	// text is not taken for the heading.
	Header string
}

// Result is the reconciled document.
type Result struct {
	HTML       string
	Entries    []pipeline.TOCEntry
	Pages      int
	Unresolved int
}

// CompileFooter compiles a user-supplied footer pattern. Patterns that match
// the empty string would split every character and are rejected.
func CompileFooter(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFooterPattern, err)
	}
	if re.MatchString("") {
		return nil, fmt.Errorf("%w: %q matches empty text", ErrInvalidFooterPattern, pattern)
	}
	return re, nil
}

// DefaultFooterPattern matches the stamp printed by the default footer
// template: "© <author> <date> Page <n> / <total>".
func DefaultFooterPattern(author, dateFormat string) (*regexp.Regexp, error) {
	date, err := dateutil.FormatPattern(dateFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFooterPattern, err)
	}
	var b strings.Builder
	b.WriteString("\u00a9" + `\s*`)
	if author != "" {
		b.WriteString(wordsPattern(author))
		b.WriteString(`\s*`)
	}
	b.WriteString(date)
	b.WriteString(`\s*Page\s*\d*\s*/\s*\d*`)
	return CompileFooter(b.String())
}

// SplitPages cuts text at every footer match. Segment i holds the text
// printed above the (i+1)th footer.
func SplitPages(footer *regexp.Regexp, text string) []string {
	return footer.Split(text, -1)
}

// HeadingPatterns returns the patterns a heading may appear as in the PDF
// text layer. Numbered headings are tried at depth 1, 2 and 3.
func HeadingPatterns(text string, numbered bool) []*regexp.Regexp {
	words := wordsPattern(cleanHeading(text))
	if words == "" {
		return nil
	}
	if !numbered {
		return []*regexp.Regexp{
			regexp.MustCompile(`(?m)^` + space + `*` + words + space + `*$`),
		}
	}
	out := make([]*regexp.Regexp, 0, 3)
	number := `\d+`
	for range 3 {
		out = append(out, regexp.MustCompile(`(?m)^`+number+space+`*`+words+space+`*$`))
		number += `\.\d+`
	}
	return out
}

// Reconcile resolves the page number of every entry and substitutes it into
// the entry's placeholder in doc. Entries are matched in order and the scan
// never moves backward. An entry found nowhere keeps its placeholder and
// does not move the scan position.
func Reconcile(footer *regexp.Regexp, entries []pipeline.TOCEntry, text, doc string, opts Options) Result {
	pages := SplitPages(footer, text)
	if re := headerPattern(opts.Header); re != nil {
		for i, p := range pages {
			pages[i] = re.ReplaceAllLiteralString(p, "")
		}
	}
	res := Result{
		HTML:    doc,
		Entries: make([]pipeline.TOCEntry, len(entries)),
		Pages:   len(pages),
	}
	copy(res.Entries, entries)

	cursor := 0
	for i := range res.Entries {
		e := &res.Entries[i]
		page := findPage(pages[cursor:], HeadingPatterns(e.Text, opts.Numbered))
		if page < 0 {
			e.Page = -1
			res.Unresolved++
			continue
		}
		cursor += page
		e.Page = cursor + opts.Offset
		res.HTML = strings.Replace(res.HTML,
			e.Placeholder(),
			pipeline.PageNumberMarker(e.Index, strconv.Itoa(e.Page)),
			1)
	}
	return res
}

func findPage(pages []string, patterns []*regexp.Regexp) int {
	if len(patterns) == 0 {
		return -1
	}
	for i, p := range pages {
		for _, re := range patterns {
			if re.MatchString(p) {
				return i
			}
		}
	}
	return -1
}

// headerPattern matches the header text at the start of a page.
func headerPattern(header string) *regexp.Regexp {
	words := wordsPattern(header)
	if words == "" {
		return nil
	}
	return regexp.MustCompile(`\A` + space + `*` + words)
}

// cleanHeading drops zero-width spaces. Entry text is already decoded.
func cleanHeading(s string) string {
	return strings.ReplaceAll(s, "\u200b", "")
}

// wordsPattern quotes each word and tolerates any run of whitespace between
// them, so headings wrapped over several lines still match.
func wordsPattern(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	return strings.Join(fields, space+`+`)
}
