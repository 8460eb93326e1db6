// Package testkit holds checks shared by tests of the formatting pipeline.
package testkit

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"modelfmt/internal/format"
)

// CheckFormatInvariants verifies that out is a valid formatting of src:
// 1) one "\n"-terminated output line per input line
// 2) formatting out again yields out
// 3) every line keeps its kind, comment text and non-empty fields
// 4) the start of every column is the same on every record
func CheckFormatInvariants(src, out []byte, opts format.Options) error {
	before := format.Parse(string(src))
	after := format.Parse(string(out))

	// 1) line count
	if got := bytes.Count(out, []byte{'\n'}); got != len(before) {
		return fmt.Errorf("line count: want %d, got %d", len(before), got)
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		return fmt.Errorf("output does not end with a newline")
	}

	// 2) idempotence
	again, err := format.Format(out, opts)
	if err != nil {
		return fmt.Errorf("second pass failed: %w", err)
	}
	if !bytes.Equal(again, out) {
		return fmt.Errorf("not idempotent:\nonce  %q\ntwice %q", out, again)
	}

	// 3) content
	if len(after) != len(before) {
		return fmt.Errorf("parsed line count: want %d, got %d", len(before), len(after))
	}
	for i := range before {
		b, a := before[i], after[i]
		if b.Kind != a.Kind || b.Text != a.Text {
			return fmt.Errorf("line %d changed: %+v -> %+v", i+1, b, a)
		}
		if !slices.Equal(nonEmpty(b.Fields), nonEmpty(a.Fields)) {
			return fmt.Errorf("line %d fields changed: %q -> %q", i+1, b.Fields, a.Fields)
		}
	}

	// 4) alignment
	rows := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	starts := map[int]int{}
	for i, line := range after {
		if line.Kind != format.LineRecord {
			continue
		}
		cols, err := ColumnStarts(rows[i], line.Fields, opts.Measure)
		if err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
		for col, start := range cols {
			if start < 0 {
				continue
			}
			if prev, ok := starts[col]; ok && prev != start {
				return fmt.Errorf("line %d: column %d starts at %d, want %d", i+1, col, start, prev)
			}
			starts[col] = start
		}
	}
	return nil
}

// ColumnStarts returns the display offset of every field in row, measured
// with m. Fields and the padding between them are measured separately, the
// same way the renderer pads them. Empty fields report -1.
func ColumnStarts(row string, fields []string, m format.Measure) ([]int, error) {
	starts := make([]int, len(fields))
	cursor, offset := 0, 0
	for i, field := range fields {
		if field == "" {
			starts[i] = -1
			continue
		}
		idx := strings.Index(row[cursor:], field)
		if idx < 0 {
			return nil, fmt.Errorf("field %q not found in %q", field, row)
		}
		offset += m.Width(row[cursor : cursor+idx])
		starts[i] = offset
		offset += m.Width(field)
		cursor += idx + len(field)
	}
	return starts, nil
}

func nonEmpty(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
