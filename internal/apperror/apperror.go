// Package apperror carries the error taxonomy the HTTP layer maps to
// status codes. All three kinds are recoverable by the caller; anything
// else surfaces as an internal error.
package apperror

import "fmt"

type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindNotFound
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}
