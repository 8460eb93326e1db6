package format

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Options tunes the pipeline.
type Options struct {
	// Measure counts field widths.
	Measure Measure
	// MaxFields bounds the field count of a record after normalization.
	// Zero accepts any count.
	MaxFields int
}

func (o Options) withDefaults() Options {
	if o.MaxFields < 0 {
		o.MaxFields = 0
	}
	return o
}

// Fingerprint identifies the options for caching formatted output.
func (o Options) Fingerprint() [32]byte {
	o = o.withDefaults()
	return sha256.Sum256([]byte(fmt.Sprintf("measure=%s;max_fields=%d", o.Measure, o.MaxFields)))
}

// Format runs the whole pipeline over src. On error no output is returned,
// so callers never see a partially formatted file.
func Format(src []byte, opt Options) ([]byte, error) {
	opt = opt.withDefaults()
	raw := splitLines(string(src))
	lines := parseLines(raw)
	if err := checkFieldCounts(raw, lines, opt.MaxFields); err != nil {
		return nil, err
	}
	widths := ColumnWidths(lines, opt.Measure)
	return Render(lines, widths, opt.Measure), nil
}

// FormatString is Format for string input.
func FormatString(src string, opt Options) (string, error) {
	out, err := Format([]byte(src), opt)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func checkFieldCounts(raw []string, lines []Line, limit int) error {
	if limit == 0 {
		return nil
	}
	for i, line := range lines {
		if line.Kind != LineRecord || len(line.Fields) <= limit {
			continue
		}
		return &FormatError{
			Kind:    ErrUnexpectedFieldCount,
			Line:    i + 1,
			Content: strings.TrimSpace(raw[i]),
			Fields:  len(line.Fields),
			Limit:   limit,
		}
	}
	return nil
}
