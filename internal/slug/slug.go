// Package slug turns titles and ids into file-name stems.
//
// Slugs follow the GitHub heading-anchor rules: lowercase, letters, marks,
// numbers, '-' and '_' are kept, each space becomes '-', everything else is
// dropped. A Registry additionally guarantees that no stem is handed out twice.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a value slugs to the empty string.
const Fallback = "document"

var lower = cases.Lower(language.Und)

// Make slugs s without collision tracking.
func Make(s string) string {
	s = lower.String(norm.NFC.String(strings.TrimSpace(s)))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsMark(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Registry hands out unique slugs. The zero value is not usable; call NewRegistry.
// A Registry is not safe for concurrent use.
type Registry struct {
	seen map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]int)}
}

// Slug returns Make(s), suffixed with -1, -2, ... when the stem was already issued.
func (r *Registry) Slug(s string) string {
	base := Make(s)
	if base == "" {
		base = Fallback
	}

	result := base
	for {
		if _, taken := r.seen[result]; !taken {
			break
		}
		r.seen[base]++
		result = base + "-" + strconv.Itoa(r.seen[base])
	}
	r.seen[result] = 0
	return result
}
