package app

import (
	"errors"
	"fmt"
)

// ErrStale is returned in check mode when a generated file is missing or
// out of date.
var ErrStale = errors.New("generated files are out of date; run go generate")

// DiagnosticsError is returned when generation reported error diagnostics.
// The diagnostics themselves have already been printed.
type DiagnosticsError struct {
	Errors int
}

func (e *DiagnosticsError) Error() string {
	if e.Errors == 1 {
		return "generation failed with 1 error"
	}
	return fmt.Sprintf("generation failed with %d errors", e.Errors)
}
