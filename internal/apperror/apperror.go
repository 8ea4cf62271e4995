// Package apperror defines the error taxonomy shared by services and the
// HTTP layer. Services return *Error values; handlers map them to status
// codes and the standard error envelope.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthenticated
	KindForbidden
	KindConflict
)

// Error is a classified failure with a client-safe message. Err keeps the
// underlying cause for logging and is never sent to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error      { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) *Error        { return &Error{Kind: KindNotFound, Message: msg} }
func Unauthenticated(msg string) *Error { return &Error{Kind: KindUnauthenticated, Message: msg} }
func Forbidden(msg string) *Error       { return &Error{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) *Error        { return &Error{Kind: KindConflict, Message: msg} }

// Internal wraps an unexpected failure. The client only ever sees the
// generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPError is the mapped form of an error ready to be rendered.
type HTTPError struct {
	Status  int
	Message string
	Code    string
}

// Response is the standard error envelope.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ToResponse converts an HTTPError to the error envelope.
func (e HTTPError) ToResponse() Response {
	return Response{Success: false, Message: e.Message, Error: e.Code}
}

// MapToHTTP maps err to its status code, client message and error code.
// Unclassified errors collapse into a generic 500.
func MapToHTTP(err error) HTTPError {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return HTTPError{Status: http.StatusInternalServerError, Message: "internal server error", Code: "INTERNAL_ERROR"}
	}
	switch e.Kind {
	case KindValidation:
		return HTTPError{Status: http.StatusBadRequest, Message: e.Message, Code: "VALIDATION_ERROR"}
	case KindNotFound:
		return HTTPError{Status: http.StatusNotFound, Message: e.Message, Code: "NOT_FOUND"}
	case KindUnauthenticated:
		return HTTPError{Status: http.StatusUnauthorized, Message: e.Message, Code: "UNAUTHENTICATED"}
	case KindForbidden:
		return HTTPError{Status: http.StatusForbidden, Message: e.Message, Code: "FORBIDDEN"}
	case KindConflict:
		// Duplicate email and duplicate screen are reported as bad requests.
		return HTTPError{Status: http.StatusBadRequest, Message: e.Message, Code: "CONFLICT"}
	}
	return HTTPError{Status: http.StatusInternalServerError, Message: "internal server error", Code: "INTERNAL_ERROR"}
}
