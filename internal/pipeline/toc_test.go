package pipeline

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNumberingState_Next - Hierarchical numbers
// ---------------------------------------------------------------------------

func TestNumberingState_Next(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		levels     []int
		wantNums   []string
		wantDepths []int
	}{
		{
			name:       "sequential h1 h2 h3",
			levels:     []int{1, 2, 3, 2, 1},
			wantNums:   []string{"1", "1.1", "1.1.1", "1.2", "2"},
			wantDepths: []int{1, 2, 3, 2, 1},
		},
		{
			name:       "starts at h2",
			levels:     []int{2, 3, 2},
			wantNums:   []string{"1", "1.1", "2"},
			wantDepths: []int{1, 2, 1},
		},
		{
			name:       "skipped level is pulled up",
			levels:     []int{1, 3, 3},
			wantNums:   []string{"1", "1.1", "1.2"},
			wantDepths: []int{1, 2, 2},
		},
		{
			name:       "shallower than first heading clamps to depth 1",
			levels:     []int{2, 1},
			wantNums:   []string{"1", "2"},
			wantDepths: []int{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := &numberingState{}
			for i, level := range tt.levels {
				num, depth := n.next(level)
				if num != tt.wantNums[i] || depth != tt.wantDepths[i] {
					t.Errorf("heading %d (h%d) = %q depth %d, want %q depth %d",
						i, level, num, depth, tt.wantNums[i], tt.wantDepths[i])
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRenderTOC - Table of contents markup
// ---------------------------------------------------------------------------

func TestRenderTOC(t *testing.T) {
	t.Parallel()

	entries := []TOCEntry{
		{Index: 0, Level: 1, Number: "1", Text: "Intro & Setup", Anchor: "toc-0", Page: -1},
		{Index: 1, Level: 2, Number: "1.1", Text: "Install", Anchor: "toc-1", Page: -1},
	}

	got := renderTOC(entries)

	for _, want := range []string{
		`<h1 class="ignoreCounter">Contents</h1>`,
		`<li class="toc-level-2"><a href="#toc-1">`,
		`<span>Intro &amp; Setup</span>`,
		`<span class="dotLeader"></span>`,
		`<span class="pageNumber" data-toc-entry="0">_</span>`,
		`<span class="pageNumber" data-toc-entry="1">_</span>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("TOC missing %q:\n%s", want, got)
		}
	}

	if renderTOC(nil) != "" {
		t.Error("renderTOC(nil) should be empty")
	}
}

func TestPageNumberMarker(t *testing.T) {
	t.Parallel()

	e := TOCEntry{Index: 7}
	if e.Placeholder() != `<span class="pageNumber" data-toc-entry="7">_</span>` {
		t.Errorf("Placeholder() = %q", e.Placeholder())
	}
	if got := PageNumberMarker(7, "12"); got != `<span class="pageNumber" data-toc-entry="7">12</span>` {
		t.Errorf("PageNumberMarker() = %q", got)
	}
}
