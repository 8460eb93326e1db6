package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Measure selects how the width of a field is counted. Byte length is never
// used: a column of multi-byte names would drift otherwise.
type Measure uint8

const (
	// WidthGraphemes counts extended grapheme clusters, so "é" written as
	// e + combining accent is one column.
	WidthGraphemes Measure = iota
	// WidthRunes counts Unicode scalar values.
	WidthRunes
	// WidthCells counts terminal cells; East Asian wide characters take two.
	WidthCells
)

// String returns the string representation of Measure.
func (m Measure) String() string {
	switch m {
	case WidthGraphemes:
		return "graphemes"
	case WidthRunes:
		return "runes"
	case WidthCells:
		return "cells"
	default:
		return "unknown"
	}
}

// ParseMeasure converts a flag or config value to a Measure.
func ParseMeasure(s string) (Measure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "graphemes", "grapheme":
		return WidthGraphemes, nil
	case "runes", "rune":
		return WidthRunes, nil
	case "cells", "cell":
		return WidthCells, nil
	default:
		return WidthGraphemes, fmt.Errorf("invalid width measure %q (expected graphemes|runes|cells)", s)
	}
}

// Width returns the width of s under m.
func (m Measure) Width(s string) int {
	switch m {
	case WidthRunes:
		return utf8.RuneCountInString(s)
	case WidthCells:
		return runewidth.StringWidth(s)
	default:
		return uniseg.GraphemeClusterCount(s)
	}
}
