// Package parsing turns a rendered explorer page into a normalized proof record.
package parsing

import "fmt"

// ErrorKind classifies extraction failures.
type ErrorKind string

const (
	// KindNoRowsFound means no strategy located a data row in the document.
	KindNoRowsFound ErrorKind = "no_rows_found"
	// KindInvalidHTML means the document could not be parsed at all.
	KindInvalidHTML ErrorKind = "invalid_html"
)

// ExtractionError represents a failure to pull the latest row out of a rendered page.
type ExtractionError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error (%s): %s", e.Kind, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ParseError reports a field that could not be interpreted and was replaced by its default.
type ParseError struct {
	Field string
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: unrecognised %s %q, using default", e.Field, e.Input)
}
