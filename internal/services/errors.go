package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a service failure. Handlers map kinds to HTTP status codes.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindUnauthenticated    ErrorKind = "unauthenticated"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindForbidden          ErrorKind = "forbidden"
	KindNotFound           ErrorKind = "not_found"
	KindConflict           ErrorKind = "conflict"
	KindInvalidState       ErrorKind = "invalid_state"
	KindInternal           ErrorKind = "internal"
)

// ServiceError carries a user-facing message and the underlying cause
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindInternal for anything that is not a ServiceError
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func validationError(message string) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: message}
}

func forbiddenError(message string) *ServiceError {
	return &ServiceError{Kind: KindForbidden, Message: message}
}

func notFoundError(message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: message}
}

func conflictError(message string) *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: message}
}

func invalidStateError(message string) *ServiceError {
	return &ServiceError{Kind: KindInvalidState, Message: message}
}

func internalError(err error) *ServiceError {
	return &ServiceError{Kind: KindInternal, Message: "Erro interno do servidor", Err: err}
}
