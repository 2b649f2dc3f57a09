// Package apperror carries the failure category of a core operation so the
// transport layer can pick a status code without inspecting error strings.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is the category of a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUpstream
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpstream:
		return "upstream"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a categorized failure. Message is safe to return to callers; Err is not.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Upstream(msg string, err error) error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message of err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}
