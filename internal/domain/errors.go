package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation ErrKind = "validation" // 400
	KindAuth       ErrKind = "auth"       // 401
	KindForbidden  ErrKind = "forbidden"  // 403
	KindNotFound   ErrKind = "not_found"  // 404
	KindConflict   ErrKind = "conflict"   // 409
	KindTiming     ErrKind = "timing"     // 422
	KindTransport  ErrKind = "transport"  // 502/504
	KindInternal   ErrKind = "internal"   // 500
)

// Stable machine codes. Clients switch on these.
const (
	CodeValidation         = "validation_error"
	CodeInvalidCredentials = "invalid_credentials"
	CodeNotAuthenticated   = "not_authenticated"
	CodePermissionDenied   = "permission_denied"
	CodeNotFound           = "not_found"
	CodeAlreadyRegistered  = "already_registered"
	CodeDuplicateUser      = "duplicate_user"
	CodeHasRegistrations   = "has_registrations"
	CodeEventInPast        = "event_in_past"
	CodeTooLateToCancel    = "too_late_to_cancel"
	CodeEventFull          = "event_full"
	CodeEventInactive      = "event_inactive"
	CodeTimeout            = "timeout"
	CodeBackendUnavailable = "backend_unavailable"
	CodeInternal           = "internal_error"
)

// Error is a structured domain error.
// Meta carries per-field reasons for validation failures.
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// KindOf reports the kind of a domain error, or KindInternal for anything else.
func KindOf(err error) ErrKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// ----------------------
// Validation (400)
// ----------------------

func ErrValidation(msg string, fields map[string]string) *Error {
	return WithMeta(New(KindValidation, CodeValidation, msg), fields)
}

func ErrInvalidField(field, reason string) *Error {
	return ErrValidation("invalid field", map[string]string{field: reason})
}

// ErrBackendRejected is a 400-class refusal of a payload by the data backend.
func ErrBackendRejected(cause error) *Error {
	return Wrap(KindValidation, CodeValidation, "request rejected by backend", cause)
}

// ----------------------
// Auth (401)
// ----------------------

func ErrInvalidCredentials() *Error {
	return New(KindAuth, CodeInvalidCredentials, "invalid username or password")
}

func ErrNotAuthenticated() *Error {
	return New(KindAuth, CodeNotAuthenticated, "authentication required")
}

// ----------------------
// Forbidden (403)
// ----------------------

func ErrPermissionDenied(permission Permission) *Error {
	return WithMeta(New(KindForbidden, CodePermissionDenied, "permission denied"), map[string]string{
		"permission": string(permission),
	})
}

// ----------------------
// Not found (404)
// ----------------------

func ErrNotFound(resource string) *Error {
	return WithMeta(New(KindNotFound, CodeNotFound, resource+" not found"), map[string]string{
		"resource": resource,
	})
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrAlreadyRegistered() *Error {
	return New(KindConflict, CodeAlreadyRegistered, "already registered for this event")
}

func ErrDuplicateUser(field string) *Error {
	return WithMeta(New(KindConflict, CodeDuplicateUser, "username or email already exists"), map[string]string{
		"field": field,
	})
}

func ErrHasRegistrations(count int) *Error {
	return WithMeta(New(KindConflict, CodeHasRegistrations, "cannot delete event with existing registrations"), map[string]string{
		"registrations": fmt.Sprint(count),
	})
}

// ----------------------
// Timing (422)
// ----------------------

func ErrEventInPast() *Error {
	return New(KindTiming, CodeEventInPast, "cannot register for past events")
}

func ErrTooLateToCancel() *Error {
	return New(KindTiming, CodeTooLateToCancel, "cannot unregister less than 24 hours before the event")
}

func ErrEventFull() *Error {
	return New(KindTiming, CodeEventFull, "event is full")
}

func ErrEventInactive() *Error {
	return New(KindTiming, CodeEventInactive, "event is not active")
}

// ----------------------
// Transport (502/504)
// ----------------------

func ErrTimeout(cause error) *Error {
	return Wrap(KindTransport, CodeTimeout, "request timeout", cause)
}

func ErrBackendUnavailable(cause error) *Error {
	return Wrap(KindTransport, CodeBackendUnavailable, "backend unavailable", cause)
}

// ----------------------
// Internal (500)
// ----------------------

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, CodeInternal, "internal error", cause)
}
