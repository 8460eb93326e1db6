// Package diff renders line diffs between a file and its formatted form.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is how many unchanged lines surround each hunk.
const contextLines = 3

var (
	headerColor = color.New(color.Bold)
	hunkColor   = color.New(color.FgCyan)
	addColor    = color.New(color.FgGreen)
	delColor    = color.New(color.FgRed)
)

type opKind uint8

const (
	opEqual opKind = iota
	opDelete
	opInsert
)

type lineOp struct {
	kind opKind
	text string
}

// lines computes a line-level edit script between before and after.
func lines(before, after string) []lineOp {
	dmp := diffmatchpatch.New()
	a, b, table := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), table)

	var ops []lineOp
	for _, d := range diffs {
		kind := opEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			kind = opDelete
		case diffmatchpatch.DiffInsert:
			kind = opInsert
		}
		for _, l := range splitKeepingLast(d.Text) {
			ops = append(ops, lineOp{kind: kind, text: l})
		}
	}
	return ops
}

func splitKeepingLast(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// Unified writes a unified diff of before -> after labelled with path.
// It writes nothing when the inputs are equal and reports whether a diff was written.
func Unified(w io.Writer, path string, before, after []byte) (bool, error) {
	if string(before) == string(after) {
		return false, nil
	}
	ops := lines(string(before), string(after))

	if _, err := headerColor.Fprintf(w, "--- %s\n+++ %s (formatted)\n", path, path); err != nil {
		return true, err
	}
	for _, h := range hunks(ops) {
		if err := writeHunk(w, ops, h); err != nil {
			return true, err
		}
	}
	return true, nil
}

type hunk struct {
	start, end int // indices into ops, end exclusive
}

func hunks(ops []lineOp) []hunk {
	var out []hunk
	for i := 0; i < len(ops); i++ {
		if ops[i].kind == opEqual {
			continue
		}
		start := max(0, i-contextLines)
		end := i
		// extend while changes are closer than two contexts apart
		for end < len(ops) {
			if ops[end].kind != opEqual {
				end++
				continue
			}
			run := end
			for run < len(ops) && ops[run].kind == opEqual {
				run++
			}
			if run == len(ops) || run-end > 2*contextLines {
				end = min(len(ops), end+contextLines)
				break
			}
			end = run
		}
		if len(out) > 0 && start <= out[len(out)-1].end {
			out[len(out)-1].end = end
		} else {
			out = append(out, hunk{start: start, end: end})
		}
		i = end - 1
	}
	return out
}

func writeHunk(w io.Writer, ops []lineOp, h hunk) error {
	oldStart, newStart := 1, 1
	for _, op := range ops[:h.start] {
		if op.kind != opInsert {
			oldStart++
		}
		if op.kind != opDelete {
			newStart++
		}
	}
	oldLen, newLen := 0, 0
	for _, op := range ops[h.start:h.end] {
		if op.kind != opInsert {
			oldLen++
		}
		if op.kind != opDelete {
			newLen++
		}
	}

	if _, err := hunkColor.Fprintf(w, "@@ -%d,%d +%d,%d @@\n", oldStart, oldLen, newStart, newLen); err != nil {
		return err
	}
	for _, op := range ops[h.start:h.end] {
		var err error
		switch op.kind {
		case opDelete:
			_, err = delColor.Fprintf(w, "-%s\n", op.text)
		case opInsert:
			_, err = addColor.Fprintf(w, "+%s\n", op.text)
		default:
			_, err = fmt.Fprintf(w, " %s\n", op.text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
