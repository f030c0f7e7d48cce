package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// locatedError carries the caller location for logs. Message drops it again
// for text that is shown to API clients.
type locatedError struct {
	msg   string
	loc   string
	cause error
}

func (e *locatedError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.msg, e.loc)
	}
	return fmt.Sprintf("%s %s \ncaused by: %v", e.msg, e.loc, e.cause)
}

func (e *locatedError) Unwrap() error {
	return e.cause
}

// New creates a new instance of the base error
func New(msg string) error {
	return &locatedError{msg: msg, loc: filePath()}
}

// Wrap creates a new error of the wrapped error
func Wrap(err error, msg string) error {
	return &locatedError{msg: msg, loc: filePath(), cause: err}
}

func Errorf(format string, args ...interface{}) error {
	return &locatedError{msg: fmt.Sprintf(format, args...), loc: filePath()}
}

// Is checks if the error is equal to the target
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As returns the wrapped error
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Message renders the error chain as "outer: inner: root" without locations.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var parts []string
	for err != nil {
		le, ok := err.(*locatedError)
		if !ok {
			parts = append(parts, err.Error())
			break
		}
		parts = append(parts, le.msg)
		err = le.cause
	}
	return strings.Join(parts, ": ")
}

func filePath() string {
	pc, f, l, ok := runtime.Caller(2)
	fn := `unknown`
	if ok {
		fn = runtime.FuncForPC(pc).Name()
	}
	return fmt.Sprintf("at %s\n\t%s:%d", fn, f, l)
}
