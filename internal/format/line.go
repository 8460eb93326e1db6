package format

// LineKind tags the variant stored in a Line.
type LineKind uint8

const (
	// LineEmpty is a line that is blank after trimming.
	LineEmpty LineKind = iota
	// LineComment is a line whose trimmed text starts with '#'.
	LineComment
	// LineRecord is any other line, split into fields.
	LineRecord
)

// String returns the string representation of LineKind.
func (k LineKind) String() string {
	switch k {
	case LineEmpty:
		return "empty"
	case LineComment:
		return "comment"
	case LineRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Line is one parsed input line. Only the fields matching Kind are set:
// Text for comments, Fields for records.
type Line struct {
	Kind   LineKind
	Text   string
	Fields []string
}

// Empty returns a blank line.
func Empty() Line { return Line{Kind: LineEmpty} }

// Comment returns a comment line holding text verbatim.
func Comment(text string) Line { return Line{Kind: LineComment, Text: text} }

// Record returns a record line with the given fields in column order.
func Record(fields ...string) Line { return Line{Kind: LineRecord, Fields: fields} }

// annotationPrefix marks the optional bracketed annotation column (index 1).
const annotationPrefix = "["

// separator joins rendered fields.
const separator = "  "
