package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidLength indicates a CSS length the PDF printer cannot use.
var ErrInvalidLength = errors.New("invalid length")

// Margins are CSS lengths, as accepted by the browser's print options.
type Margins struct {
	Top    string `yaml:"top"`
	Right  string `yaml:"right"`
	Bottom string `yaml:"bottom"`
	Left   string `yaml:"left"`
}

// Inches holds margins converted for the DevTools print call.
type Inches struct {
	Top, Right, Bottom, Left float64
}

// Inches converts every side. Empty sides are zero.
func (m Margins) Inches() (Inches, error) {
	var out Inches
	sides := []struct {
		name string
		in   string
		out  *float64
	}{
		{"top", m.Top, &out.Top},
		{"right", m.Right, &out.Right},
		{"bottom", m.Bottom, &out.Bottom},
		{"left", m.Left, &out.Left},
	}
	for _, s := range sides {
		v, err := ParseLength(s.in)
		if err != nil {
			return Inches{}, fmt.Errorf("%s: %w", s.name, err)
		}
		*s.out = v
	}
	return out, nil
}

// perInch maps CSS absolute units to their size in inches.
var perInch = map[string]float64{
	"in": 1,
	"cm": 2.54,
	"mm": 25.4,
	"pt": 72,
	"pc": 6,
	"px": 96,
}

// ParseLength converts a CSS absolute length ("2cm", "0.5in", "0") to inches.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, nil
	}

	num, unit := s, "px"
	for u := range perInch {
		if strings.HasSuffix(s, u) {
			num, unit = strings.TrimSpace(strings.TrimSuffix(s, u)), u
			break
		}
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidLength, s)
	}
	return v / perInch[unit], nil
}
