package format

// Writer accumulates formatted output and provides helpers for emitting
// canonical whitespace.
type Writer struct {
	buf []byte
}

// NewWriter creates a writer with room for sizeHint bytes.
func NewWriter(sizeHint int) *Writer {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated formatted output.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteString writes s verbatim.
func (w *Writer) WriteString(s string) {
	w.buf = append(w.buf, s...)
}

// Pad writes n spaces. Non-positive n writes nothing.
func (w *Writer) Pad(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, ' ')
	}
}

// Separator writes the column separator.
func (w *Writer) Separator() {
	w.buf = append(w.buf, separator...)
}

// Newline terminates the current line.
func (w *Writer) Newline() {
	w.buf = append(w.buf, '\n')
}
