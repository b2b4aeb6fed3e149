// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// FailureKind classifies service failures so handlers can map them to HTTP
// responses without matching on message strings.
type FailureKind string

const (
	// Malformed or missing input; surfaced with a corrective message.
	KindValidation FailureKind = "validation"
	// Actor's role or ownership does not match the resource.
	KindAuthorization FailureKind = "authorization"
	// A lifecycle transition attempted from an incompatible state. The
	// resource is left unchanged.
	KindGuard FailureKind = "guard"
	// Resource does not exist.
	KindNotFound FailureKind = "not_found"
	// Lost an optimistic-lock race or a commit failed; retryable.
	KindConflict FailureKind = "conflict"
	// Both remote and local file stores failed.
	KindStorage FailureKind = "storage"
)

type ServiceError struct {
	Kind    FailureKind
	Message string
	cause   error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.cause }

func newError(kind FailureKind, format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) *ServiceError {
	return newError(KindValidation, format, args...)
}

func Authorizationf(format string, args ...interface{}) *ServiceError {
	return newError(KindAuthorization, format, args...)
}

func Guardf(format string, args ...interface{}) *ServiceError {
	return newError(KindGuard, format, args...)
}

func NotFoundf(format string, args ...interface{}) *ServiceError {
	return newError(KindNotFound, format, args...)
}

func Conflictf(format string, args ...interface{}) *ServiceError {
	return newError(KindConflict, format, args...)
}

func Storagef(cause error, format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: KindStorage, Message: fmt.Sprintf(format, args...), cause: cause}
}

// IsKind reports whether err is a ServiceError of the given kind.
func IsKind(err error, kind FailureKind) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// KindOf extracts the failure kind, or "" for untyped (persistence) errors.
func KindOf(err error) FailureKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
