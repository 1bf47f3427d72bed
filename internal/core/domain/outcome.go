package domain

import (
	"fmt"
	"strings"
)

// Outcome carries either a value or the message of an anticipated failure.
// Unanticipated failures travel as plain errors instead.
type Outcome[T any] struct {
	value   T
	message string
	ok      bool
}

// Success wraps v in a successful Outcome.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, ok: true}
}

// Failure builds a failed Outcome with the given reason.
func Failure[T any](message string) Outcome[T] {
	return Outcome[T]{message: message}
}

// OK reports whether the Outcome holds a value.
func (o Outcome[T]) OK() bool { return o.ok }

// Value returns the wrapped value; the zero value for a failure.
func (o Outcome[T]) Value() T { return o.value }

// Message returns the failure reason; empty for a success.
func (o Outcome[T]) Message() string { return o.message }

// MissingFieldError reports that the upstream payload did not have the
// expected shape at Path.
type MissingFieldError struct {
	Path []string
	Err  error
}

func (e *MissingFieldError) Error() string {
	p := strings.Join(e.Path, ".")
	if e.Err != nil {
		return fmt.Sprintf("expected field at %s: %v", p, e.Err)
	}
	return fmt.Sprintf("expected field at %s is missing", p)
}

func (e *MissingFieldError) Unwrap() error { return e.Err }
