package display

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedDesktop means the desktop could not be classified into any
// variant with a working detection method.
var ErrUnsupportedDesktop = errors.New("no supported display detection method for this desktop environment")

// MissingDepsError reports external query tools required by a provider that
// are not installed.
type MissingDepsError struct {
	Missing []string
}

func (e *MissingDepsError) Error() string {
	return fmt.Sprintf("missing required dependencies: %s", strings.Join(e.Missing, ", "))
}

// QueryError reports a display query that produced no usable result. Err is
// set when the tool itself failed to run; Reason when it ran but its output
// matched nothing.
type QueryError struct {
	Tool   string
	Reason string
	Err    error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed to run: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s returned nothing usable: %s", e.Tool, e.Reason)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// MalformedStateError means an output was selected but its dimensions could
// not be resolved to positive integers.
type MalformedStateError struct {
	Output string
	Width  int
	Height int
}

func (e *MalformedStateError) Error() string {
	return fmt.Sprintf("output %s resolved to invalid dimensions %dx%d", e.Output, e.Width, e.Height)
}
