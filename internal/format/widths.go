package format

// ColumnWidths returns, for every column index, the widest field found at
// that index among record lines. Rows shorter than the widest one simply do
// not contribute to the columns they lack.
func ColumnWidths(lines []Line, m Measure) []int {
	columns := 0
	for _, line := range lines {
		if line.Kind == LineRecord && len(line.Fields) > columns {
			columns = len(line.Fields)
		}
	}

	widths := make([]int, columns)
	for _, line := range lines {
		if line.Kind != LineRecord {
			continue
		}
		for i, field := range line.Fields {
			if w := m.Width(field); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}
