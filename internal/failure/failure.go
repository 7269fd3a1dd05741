// Package failure defines the setup-error taxonomy of a verification run.
//
// Every error a run can return maps to exactly one Class. Verification mismatches
// are not errors and never appear here: they are reported as outcomes.
package failure

import (
	"errors"
	"fmt"
)

// Class is a stable failure category.
type Class string

const (
	AnnotationSyntax Class = "ANNOTATION_SYNTAX"
	Resolution       Class = "RESOLUTION"
	Execution        Class = "EXECUTION"
	Configuration    Class = "CONFIGURATION"
)

// Error makes a class usable as an [errors.Is] target.
func (c Class) Error() string {
	return string(c)
}

// ExitCode returns the process exit code for this failure class.
func (c Class) ExitCode() int {
	switch c {
	case Execution:
		return 10
	default:
		return 2
	}
}

// Error is the structured error of a failed run setup.
type Error struct {
	Class   Class
	File    string
	Line    int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case e.File != "" && e.Line > 0:
		msg = fmt.Sprintf("%s: %s:%d: %s", e.Class, e.File, e.Line, e.Message)
	case e.File != "":
		msg = fmt.Sprintf("%s: %s: %s", e.Class, e.File, e.Message)
	default:
		msg = fmt.Sprintf("%s: %s", e.Class, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches class sentinels, so errors.Is(err, failure.Resolution) works through wrapping.
func (e *Error) Is(target error) bool {
	c, ok := target.(Class)
	return ok && c == e.Class
}

// ExitCode returns the exit code of the error class.
func (e *Error) ExitCode() int {
	return e.Class.ExitCode()
}

// New creates an error of the given class pointing to the file line.
// Zero line means the whole file, empty file means no particular file.
func New(class Class, file string, line int, format string, a ...any) *Error {
	return &Error{
		Class:   class,
		File:    file,
		Line:    line,
		Message: fmt.Sprintf(format, a...),
	}
}

// Wrap creates an error of the given class wrapping an existing error.
func Wrap(class Class, file string, cause error, format string, a ...any) *Error {
	return &Error{
		Class:   class,
		File:    file,
		Message: fmt.Sprintf(format, a...),
		Cause:   cause,
	}
}

// ClassOf returns the class of the first failure error in the chain.
func ClassOf(err error) (Class, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}

	return e.Class, true
}
