package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable error taxonomy propagated from the engine to the
// tool surface. Only BadInput, NoMatch, RateLimited and Internal fail an
// operation outright; UpstreamUnavailable and Degraded are carried in a
// successful (possibly partial) response instead.
type ErrorKind string

const (
	BadInput            ErrorKind = "bad_input"
	NoMatch             ErrorKind = "no_match"
	RateLimited         ErrorKind = "rate_limited"
	UpstreamUnavailable ErrorKind = "upstream_unavailable"
	Degraded            ErrorKind = "degraded"
	Internal            ErrorKind = "internal"
)

// Error is the engine-wide error type. It wraps an underlying cause (if
// any) with a stable Kind so the tool surface can map it to a JSON-RPC-ish
// {code, message} shape without string-matching error text.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error with the given kind and message.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error with the given kind, message and wrapped cause.
func Wrap(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the ErrorKind from err, defaulting to Internal for
// errors that did not originate from this package.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
