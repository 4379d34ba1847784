package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrorKind classifies failures so callers can decide between aborting,
// skipping an item, or reporting a warning.
type ErrorKind string

const (
	KindConfiguration   ErrorKind = "CONFIGURATION"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindValidation      ErrorKind = "VALIDATION"
	KindRemoteTransient ErrorKind = "REMOTE_TRANSIENT"
	KindRemoteMutation  ErrorKind = "REMOTE_MUTATION"
)

// Error is the typed error returned across package boundaries.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return string(e.Kind) + ": " + msg
	}
	return string(e.Kind) + ": " + e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an Error without an underlying cause.
func NewError(kind ErrorKind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// WrapError attaches a kind to an existing error. A nil err yields nil.
func WrapError(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an Error with a formatted message.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func quote(s string) string { return strconv.Quote(s) }
