package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is matched by every *Error via errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// Error reports configuration that cannot be used: a malformed or missing
// callable reference, a missing model store root, or a sample pipeline that
// lacks a required stage. Context is a caller-supplied prefix that only
// helps the reader locate the problem.
type Error struct {
	Context string
	Msg     string
	Err     error
}

// Errorf builds an *Error with a formatted message.
func Errorf(context, format string, args ...any) *Error {
	return &Error{Context: context, Msg: fmt.Sprintf(format, args...)}
}

// Wrapf builds an *Error carrying an underlying cause.
func Wrapf(err error, context, format string, args ...any) *Error {
	return &Error{Context: context, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Context != "" {
		msg = e.Context + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrInvalid) match any configuration error.
func (e *Error) Is(target error) bool { return target == ErrInvalid }
