package contract

import (
	"errors"
	"fmt"
)

// ErrInputNotFound is returned when a data or result file a phase needs is missing.
var ErrInputNotFound = errors.New("input not found")

// ErrSkipped marks a report step that had nothing to render. It is not a failure.
var ErrSkipped = errors.New("skipped")

// InputNotFoundError names the missing path.
type InputNotFoundError struct {
	Path string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("input not found: %s", e.Path)
}

func (e *InputNotFoundError) Unwrap() error { return ErrInputNotFound }

// MissingInputError is returned by analyze-only runs without an aggregated data file.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("data file not found: %s", e.Path)
}

func (e *MissingInputError) Unwrap() error { return ErrInputNotFound }

// ParseError is a malformed individual result file. The scan continues past it.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RenderError is a failed chart or report step.
type RenderError struct {
	Step string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Step, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// UsageError is a conflicting or invalid command line.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// IsUsageError reports whether err is, or wraps, a UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}
