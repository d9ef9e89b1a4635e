package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level error kinds. Callers match them with errors.Is; the
	// concrete value returned is usually an *Error wrapping one of these.
	ErrorValidation         = errors.New("validation error")
	ErrorConflict           = errors.New("conflict")
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorUnauthenticated    = errors.New("unauthenticated")
	ErrorForbidden          = errors.New("forbidden")
)

// Error is a classified application error. Message is safe to show to the
// client; Code is only set for authentication failures.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the kind so that errors.Is(err, ErrorValidation) works.
func (e *Error) Unwrap() error {
	return e.Kind
}

// ValidationError reports bad or missing input.
func ValidationError(format string, args ...any) error {
	return &Error{Kind: ErrorValidation, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a uniqueness violation.
func ConflictError(format string, args ...any) error {
	return &Error{Kind: ErrorConflict, Message: fmt.Sprintf(format, args...)}
}

// InvalidCredentialsError reports a failed login.
func InvalidCredentialsError(message string) error {
	return &Error{Kind: ErrorInvalidCredentials, Message: message}
}

// AuthError reports a missing or unusable token. The code is sent to the client.
func AuthError(code, message string) error {
	return &Error{Kind: ErrorUnauthenticated, Code: code, Message: message}
}

// ForbiddenError reports an authenticated caller touching someone else's resource.
func ForbiddenError(format string, args ...any) error {
	return &Error{Kind: ErrorForbidden, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing resource. It unwraps to ErrorNotFound.
func NotFoundError(format string, args ...any) error {
	return &Error{Kind: ErrorNotFound, Message: fmt.Sprintf(format, args...)}
}

// AsError returns the classified error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
