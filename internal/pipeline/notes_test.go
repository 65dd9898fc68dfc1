package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldmarkNotes_Render(t *testing.T) {
	t.Parallel()

	n := NewNotesRenderer()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis and highlight",
			input:    "**Draft** copy, ==internal only==",
			contains: []string{"<strong>Draft</strong>", "<mark>internal only</mark>"},
		},
		{
			name:     "hard wraps",
			input:    "line one\r\nline two",
			contains: []string{"line one<br />"},
			excludes: []string{"\r"},
		},
		{
			name:     "raw html is dropped",
			input:    "<script>alert(1)</script>",
			excludes: []string{"<script>"},
		},
		{
			name:     "gfm table",
			input:    "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := n.Render(context.Background(), tt.input)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, string(got), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, string(got), s)
			}
		})
	}
}

func TestGoldmarkNotes_Empty(t *testing.T) {
	t.Parallel()

	got, err := NewNotesRenderer().Render(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGoldmarkNotes_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewNotesRenderer().Render(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeNotes(t *testing.T) {
	t.Parallel()

	got := normalizeNotes("\n\na\r\n\r\n\r\n\r\nb ==c==\n\n")
	assert.Equal(t, "a\n\nb "+markOpen+"c"+markClose, got)
}
