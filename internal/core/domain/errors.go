package domain

import "net/http"

// ErrorKind classifies a failure raised by the store or a service.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindRateLimited
	KindNotFound
	KindConflict
)

// Wire codes carried in the error envelope.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeValidation   = "VALIDATION"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
)

// Error is a classified failure. Two errors match under errors.Is when they
// share a kind, so callers can compare against the sentinels below while the
// message stays specific to the call site.
type Error struct {
	Kind    ErrorKind
	Message string
}

var (
	ErrValidation   = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "Forbidden"}
	ErrRateLimited  = &Error{Kind: KindRateLimited, Message: "Too many requests"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict     = &Error{Kind: KindConflict, Message: "conflict"}
)

func (e *Error) Error() string { return e.Message }

// Is reports kind equality with another *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Status returns the HTTP status associated with the kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable code. Rate limiting shares the
// FORBIDDEN code with authorization refusals.
func (e *Error) Code() string {
	switch e.Kind {
	case KindValidation:
		return CodeValidation
	case KindUnauthorized:
		return CodeUnauthorized
	case KindForbidden, KindRateLimited:
		return CodeForbidden
	case KindNotFound:
		return CodeNotFound
	case KindConflict:
		return CodeConflict
	default:
		return ""
	}
}

func NewValidationError(msg string) error   { return &Error{Kind: KindValidation, Message: msg} }
func NewUnauthorizedError(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }
func NewNotFoundError(msg string) error     { return &Error{Kind: KindNotFound, Message: msg} }
func NewConflictError(msg string) error     { return &Error{Kind: KindConflict, Message: msg} }
