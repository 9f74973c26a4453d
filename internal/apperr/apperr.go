// Package apperr defines the typed errors shared by the lookup, form and
// presentation layers. The HTTP layer maps a Kind to a status code and the
// UI layer maps it to the message shown in the error panel.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindValidation indicates invalid user input.
	KindValidation
	// KindNotFound is the domain-negative outcome: the lookup service answered
	// but has no such case.
	KindNotFound
	// KindUnavailable indicates a transport failure talking to a backend.
	KindUnavailable
	// KindBusy indicates the operation was rejected because another one is
	// still in flight.
	KindBusy
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

// User-facing messages.
const (
	MsgNotFound = "Case not found in the system"
	MsgNetwork  = "Network error: Please check your connection and try again"
	MsgGeneric  = "An error occurred while searching"
	MsgBusy     = "A search is already in progress"
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	case KindBusy:
		return "busy"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a domain error with a typed Kind.
type Error struct {
	Kind    Kind
	Message string
	Op      string // Operation that failed (optional)
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusBadGateway
	case KindBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WithOp sets the operation name and returns the error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Unavailable(err error) *Error {
	return Wrap(KindUnavailable, MsgNetwork, err)
}

func Busy() *Error {
	return New(KindBusy, MsgBusy)
}

// GetKind extracts the error kind anywhere in the chain.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// UserMessage returns the text to show in the error panel. Domain-negative
// and validation errors keep their own message; transport and unexpected
// errors collapse to the generic network message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return MsgNetwork
	}
	switch e.Kind {
	case KindNotFound, KindValidation, KindBusy:
		if e.Message != "" {
			return e.Message
		}
		if e.Kind == KindNotFound {
			return MsgNotFound
		}
		return MsgGeneric
	default:
		return MsgNetwork
	}
}

// HTTPStatus maps any error to a status code.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
