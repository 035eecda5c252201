package fetch

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies browser-stage failures.
type ErrorKind string

const (
	KindBrowser           ErrorKind = "browser_failed"
	KindNavigation        ErrorKind = "navigation_failed"
	KindNavigationTimeout ErrorKind = "navigation_timeout"
	KindTableNotFound     ErrorKind = "table_not_found"
)

// Error represents a failure while rendering a page.
type Error struct {
	URL     string
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s (%s): %s: %v", e.URL, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s (%s): %s", e.URL, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// navigationError classifies a failed navigation as a timeout or a plain failure.
func navigationError(pageURL string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{URL: pageURL, Kind: KindNavigationTimeout, Message: "page did not settle in time", Cause: err}
	}
	return &Error{URL: pageURL, Kind: KindNavigation, Message: "navigation failed", Cause: err}
}
