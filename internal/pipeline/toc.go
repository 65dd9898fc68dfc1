package pipeline

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// TOCEntry is one table-of-contents line. Page stays -1 until the
// rendered PDF has been measured.
type TOCEntry struct {
	Index  int
	Level  int    // 1-3, after normalization
	Number string // "1", "1.2", "1.2.3"; empty when numbering is off
	Text   string // decoded heading text
	Anchor string // id of the toc-target anchor
	Page   int
}

// Placeholder returns the page-number marker emitted for the entry.
func (e TOCEntry) Placeholder() string {
	return PageNumberMarker(e.Index, "_")
}

// PageNumberMarker renders the page-number span of entry index holding value.
func PageNumberMarker(index int, value string) string {
	return `<span class="pageNumber" data-toc-entry="` + strconv.Itoa(index) + `">` + value + `</span>`
}

// numberingState tracks hierarchical heading numbers.
type numberingState struct {
	counters     [3]int
	minLevelSeen int // for normalization (0 = not set)
	lastLevel    int
}

// next returns the number string and effective depth for a heading level.
// The shallowest level seen first becomes depth 1, and skipped levels
// (h1 followed by h3) are pulled up to a direct child.
func (n *numberingState) next(level int) (numStr string, effectiveDepth int) {
	if n.minLevelSeen == 0 {
		n.minLevelSeen = level
	}

	effectiveDepth = max(level-n.minLevelSeen+1, 1)
	if n.lastLevel > 0 && effectiveDepth > n.lastLevel+1 {
		effectiveDepth = n.lastLevel + 1
	}

	for i := effectiveDepth; i < len(n.counters); i++ {
		n.counters[i] = 0
	}
	n.counters[effectiveDepth-1]++
	n.lastLevel = effectiveDepth

	parts := make([]string, effectiveDepth)
	for i := range effectiveDepth {
		parts[i] = strconv.Itoa(n.counters[i])
	}
	return strings.Join(parts, "."), effectiveDepth
}

// renderTOC creates the table of contents with one placeholder per entry.
// Uses a list with dot leaders; layout comes from the print stylesheet.
func renderTOC(entries []TOCEntry) string {
	if len(entries) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<nav class="toc"><h1 class="ignoreCounter">Contents</h1><ul class="toc-headings">`)

	for _, e := range entries {
		fmt.Fprintf(&buf, `<li class="toc-level-%d"><a href="#%s">`, e.Level, html.EscapeString(e.Anchor))
		if e.Number != "" {
			buf.WriteString(`<span class="toc-number">`)
			buf.WriteString(e.Number)
			buf.WriteString(`</span>`)
		}
		buf.WriteString(`<span>`)
		buf.WriteString(html.EscapeString(e.Text))
		buf.WriteString(`</span><span class="dotLeader"></span>`)
		buf.WriteString(e.Placeholder())
		buf.WriteString(`</a></li>`)
	}

	buf.WriteString(`</ul></nav>`)
	return buf.String()
}
