// Package errors provides constant sentinel errors and shadows the standard library errors package
// so callers only need a single import.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins a sentinel message with the message of the error it wraps.
const Separator = " -- "

// Error is a string based error type allowing packages to declare const sentinel errors.
type Error string

func (s Error) Error() string {
	return string(s)
}

// Is reports whether target is this sentinel or a wrapping of it.
func (s Error) Is(target error) bool {
	if target == nil {
		return false
	}
	msg := target.Error()
	return msg == string(s) || strings.HasPrefix(msg, string(s)+Separator)
}

// Wrap returns an error whose message is the sentinel followed by the cause.
// Both the sentinel and the cause remain matchable with Is.
func (s Error) Wrap(err error) error {
	return wrappedError{sentinel: s, cause: err}
}

// Wrapf is Wrap with a formatted cause.
func (s Error) Wrapf(format string, args ...any) error {
	return wrappedError{sentinel: s, cause: fmt.Errorf(format, args...)}
}

type wrappedError struct {
	sentinel Error
	cause    error
}

func (w wrappedError) Error() string {
	if w.cause == nil {
		return string(w.sentinel)
	}
	return string(w.sentinel) + Separator + w.cause.Error()
}

func (w wrappedError) Is(target error) bool {
	if s, ok := target.(Error); ok {
		return s == w.sentinel
	}
	return false
}

func (w wrappedError) Unwrap() error {
	return w.cause
}

// Is checks if err is equivalent to target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns a new error with the specified message.
func New(message string) error {
	return errors.New(message)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// UnwrapErrors returns the errors held by a joined error, or err itself.
func UnwrapErrors(err error) []error {
	if err == nil {
		return nil
	}
	if je, ok := err.(interface{ Unwrap() []error }); ok {
		return je.Unwrap()
	}
	return []error{err}
}
