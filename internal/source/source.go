// Package source defines the shared fetch contract implemented by the
// per-service adapter subpackages (reddit, booru, youtube).
//
// Each adapter translates one upstream listing protocol into the same
// shape: give me a criteria and a cursor, get back one page of normalized
// media items and the cursor for the next page. Raw upstream shapes never
// escape an adapter.
package source

import (
	"errors"
	"fmt"

	"github.com/abelbrown/mosaic/internal/media"
)

// Page is one fetched page of a listing. Next is media.NoCursor when the
// listing is exhausted.
type Page struct {
	Items []media.Item
	Next  media.Cursor
}

// ErrorKind classifies fetch failures.
type ErrorKind int

const (
	// KindValidation means the query was malformed and rejected before
	// any network call.
	KindValidation ErrorKind = iota
	// KindTransport means a network failure or non-2xx response.
	KindTransport
	// KindAuth means the credential exchange itself failed; retrying the
	// request without fixing credentials will not help.
	KindAuth
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Error is the only error type an adapter returns past its boundary.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validationf builds a validation error. No network call was made.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Transport wraps a network or HTTP-status failure.
func Transport(msg string, err error) *Error {
	return &Error{Kind: KindTransport, Msg: msg, Err: err}
}

// Auth wraps a credential failure.
func Auth(msg string, err error) *Error {
	return &Error{Kind: KindAuth, Msg: msg, Err: err}
}

// KindOf extracts the kind from an adapter error chain, defaulting to
// transport for anything unrecognized.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindTransport
}
