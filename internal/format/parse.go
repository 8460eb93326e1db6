package format

import "strings"

// Parse splits src into lines and classifies each of them. The result has
// exactly one Line per input line, in input order. A terminator at the very
// end of src does not start another line, and a "\r" before "\n" is dropped.
func Parse(src string) []Line {
	return parseLines(splitLines(src))
}

func parseLines(rawLines []string) []Line {
	lines := make([]Line, 0, len(rawLines))
	for _, raw := range rawLines {
		lines = append(lines, parseLine(raw))
	}
	return lines
}

func parseLine(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Empty()
	}
	if strings.HasPrefix(trimmed, "#") {
		return Comment(trimmed)
	}
	return Record(splitFields(trimmed)...)
}

// splitFields cuts a trimmed record line on double spaces and keeps index 1
// reserved for the bracketed annotation column.
func splitFields(line string) []string {
	tokens := strings.Split(line, separator)
	fields := make([]string, 0, len(tokens)+1)
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		fields = append(fields, tok)
	}

	if len(fields) > 1 && !strings.HasPrefix(fields[1], annotationPrefix) {
		fields = append(fields, "")
		copy(fields[2:], fields[1:])
		fields[1] = ""
	}
	return fields
}

func splitLines(src string) []string {
	if src == "" {
		return nil
	}
	src = strings.TrimSuffix(src, "\n")
	parts := strings.Split(src, "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}
