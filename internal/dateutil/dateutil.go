// Package dateutil converts user-friendly date formats (YYYY-MM-DD) into Go
// layouts for page stamps, and into regular expressions that recognize those
// stamps in extracted PDF text.
package dateutil

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length to prevent abuse.
const MaxDateFormatLength = 50

// dateTokens maps user-friendly tokens to Go layout components and to the
// pattern matching their rendered output.
// Ordered by length descending for greedy matching.
var dateTokens = []struct {
	token   string
	goFmt   string
	pattern string
}{
	{"YYYY", "2006", `\d{4}`},
	{"MMMM", "January", `\p{L}+`},
	{"MMM", "Jan", `\p{L}{3}`},
	{"YY", "06", `\d{2}`},
	{"MM", "01", `\d{2}`},
	{"DD", "02", `\d{2}`},
	{"M", "1", `\d{1,2}`},
	{"D", "2", `\d{1,2}`},
}

// DatePresets provides named shortcuts for common date formats.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// expandPreset returns the format behind a preset name, or format itself.
func expandPreset(format string) string {
	if preset, ok := DatePresets[strings.ToLower(format)]; ok {
		return preset
	}
	return format
}

// scanFormat tokenizes format, calling token for every date token (by index
// into dateTokens) and literal for bracket-escaped or unrecognized text.
func scanFormat(format string, token func(int), literal func(string)) error {
	if format == "" {
		return fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			literal(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for idx, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				token(idx)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			literal(format[i : i+1])
			i++
		}
	}
	return nil
}

// ParseDateFormat converts a user-friendly format string to Go's time format.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D
// Use brackets to escape literal text: [Date] preserves "Date" literally.
// Returns ErrInvalidDateFormat if the format is empty, too long, or has unclosed brackets.
func ParseDateFormat(format string) (string, error) {
	var result strings.Builder
	result.Grow(len(format) + 10)

	err := scanFormat(format,
		func(idx int) { result.WriteString(dateTokens[idx].goFmt) },
		func(lit string) { result.WriteString(lit) },
	)
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

// FormatPattern returns a regular expression source matching any date
// rendered with format (or a preset name). Literal text is quoted and
// whitespace is relaxed to \s*, since PDF text extraction does not preserve
// spacing reliably.
func FormatPattern(format string) (string, error) {
	var result strings.Builder
	lastSpace := false

	err := scanFormat(expandPreset(format),
		func(idx int) {
			result.WriteString(dateTokens[idx].pattern)
			lastSpace = false
		},
		func(lit string) {
			for _, r := range lit {
				if unicode.IsSpace(r) {
					if !lastSpace {
						result.WriteString(`\s*`)
					}
					lastSpace = true
					continue
				}
				result.WriteString(regexp.QuoteMeta(string(r)))
				lastSpace = false
			}
		},
	)
	if err != nil {
		return "", err
	}
	return result.String(), nil
}

// Format renders t with a user-friendly format or preset name.
func Format(format string, t time.Time) (string, error) {
	goFmt, err := ParseDateFormat(expandPreset(format))
	if err != nil {
		return "", err
	}
	return t.Format(goFmt), nil
}
