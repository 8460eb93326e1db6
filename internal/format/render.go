package format

// Render serializes lines, padding every record field but the last to the
// width of its column. Each line, the last one included, ends with "\n".
// widths shorter than a record are treated as zero for the missing columns.
func Render(lines []Line, widths []int, m Measure) []byte {
	w := NewWriter(estimateSize(lines, widths))
	for _, line := range lines {
		switch line.Kind {
		case LineEmpty:
		case LineComment:
			w.WriteString(line.Text)
		case LineRecord:
			renderRecord(w, line.Fields, widths, m)
		}
		w.Newline()
	}
	return w.Bytes()
}

func renderRecord(w *Writer, fields []string, widths []int, m Measure) {
	last := len(fields) - 1
	for i, field := range fields {
		w.WriteString(field)
		if i == last {
			break
		}
		width := 0
		if i < len(widths) {
			width = widths[i]
		}
		w.Pad(width - m.Width(field))
		w.Separator()
	}
}

func estimateSize(lines []Line, widths []int) int {
	rowWidth := 0
	for _, wd := range widths {
		rowWidth += wd + len(separator)
	}
	size := 0
	for _, line := range lines {
		switch line.Kind {
		case LineComment:
			size += len(line.Text) + 1
		case LineRecord:
			size += rowWidth + 1
		default:
			size++
		}
	}
	return size
}
