package format

import (
	"errors"
	"fmt"
)

// ErrUnexpectedFieldCount reports a record whose field count is outside the
// accepted range. Match it with errors.Is.
var ErrUnexpectedFieldCount = errors.New("unexpected field count")

// FormatError locates a structural problem in the input.
type FormatError struct {
	Kind    error  // ErrUnexpectedFieldCount
	Line    int    // 1-based
	Content string // the trimmed offending line
	Fields  int    // field count after normalization
	Limit   int    // accepted maximum
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format: line %d: %v (%d fields, at most %d allowed): %q",
		e.Line, e.Kind, e.Fields, e.Limit, e.Content)
}

func (e *FormatError) Unwrap() error { return e.Kind }
