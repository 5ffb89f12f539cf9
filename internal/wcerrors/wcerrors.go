// Package wcerrors provides the structured error type used across the
// compile pipeline. It separates fatal failures (bad configuration, git
// unavailable) from per-input failures that a continue-on-error run
// collects and reports in aggregate, so the two cannot be confused by
// callers inspecting only an error string.
package wcerrors

import (
	"errors"
	"fmt"
)

// Category classifies an error for reporting and exit-code mapping.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryInput      Category = "input"
	CategoryCompile    Category = "compile"
	CategoryLookup     Category = "lookup"
	CategoryGit        Category = "git"
	CategoryFilesystem Category = "filesystem"
)

// Error is a categorized error. Fatal errors abort the run immediately;
// non-fatal ones are recorded against their input path and reported once
// after the full pass (unless stop-on-error is set).
type Error struct {
	Category Category
	Fatal    bool
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Category, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Category, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Report returns the text recorded against an input path in the
// aggregate failure report. The category stays out of it: the report
// quotes the underlying message verbatim, keyed by the input path.
func (e *Error) Report() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Category)
}

// New creates a non-fatal error in the given category.
func New(cat Category, msg string) *Error {
	return &Error{Category: cat, Message: msg}
}

// Wrap creates a non-fatal error wrapping a cause.
func Wrap(cause error, cat Category, msg string) *Error {
	return &Error{Category: cat, Message: msg, Cause: cause}
}

// Config errors are always fatal: they surface before any compilation
// starts.

func Configf(format string, args ...any) *Error {
	return &Error{Category: CategoryConfig, Fatal: true, Message: fmt.Sprintf(format, args...)}
}

func ConfigWrap(cause error, msg string) *Error {
	return &Error{Category: CategoryConfig, Fatal: true, Message: msg, Cause: cause}
}

// InputNotFound reports a missing input file. Recoverable under
// continue-on-error. The message is keyed by the input path in the
// failure report, so it does not repeat the path.
func InputNotFound() *Error {
	return New(CategoryInput, "Path does not exist")
}

// CompileFailed reports an external compiler rejection for one input.
// The report carries the compiler's own message.
func CompileFailed(cause error) *Error {
	return Wrap(cause, CategoryCompile, "")
}

// LookupFailed reports a template referencing a path that is not in the
// run's compiled file map.
func LookupFailed(path string) *Error {
	return New(CategoryLookup, fmt.Sprintf("no compiled path: %s", path))
}

// GitWrap reports a version-control failure. Fatal: staging was
// explicitly requested and cannot be honored.
func GitWrap(cause error, msg string) *Error {
	return &Error{Category: CategoryGit, Fatal: true, Message: msg, Cause: cause}
}

// IsFatal reports whether err is (or wraps) a fatal Error.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Fatal
	}
	return false
}

// CategoryOf returns the category of err, or "" when err is not an Error.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}
