// Package apperr defines the error taxonomy shared by the client core:
// auth failures, validation failures, network failures and missing resources.
// Callers branch with errors.Is / errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// AuthKind discriminates authentication failures.
type AuthKind int

const (
	// InvalidCredentials means the backend rejected username/password.
	InvalidCredentials AuthKind = iota
	// TokenExpired means a locally-decoded expiry claim is in the past.
	TokenExpired
	// TokenMalformed means the persisted token could not be decoded.
	TokenMalformed
	// Unauthorized means the backend answered 401/403 on an authenticated
	// call: the universal session-invalid signal.
	Unauthorized
)

func (k AuthKind) String() string {
	switch k {
	case InvalidCredentials:
		return "invalid credentials"
	case TokenExpired:
		return "token expired"
	case TokenMalformed:
		return "token malformed"
	case Unauthorized:
		return "unauthorized"
	default:
		return "auth error"
	}
}

// AuthError is any authentication / authorization failure.
type AuthError struct {
	Kind    AuthKind
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth: %s: %s", e.Kind, e.Message)
	}
	return "auth: " + e.Kind.String()
}

// Auth builds an AuthError of the given kind.
func Auth(kind AuthKind, msg string) error {
	return &AuthError{Kind: kind, Message: msg}
}

// IsAuth reports whether err is an AuthError of the given kind.
func IsAuth(err error, kind AuthKind) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Kind == kind
}

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError for a field.
func Validation(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// NetworkError wraps a request failure or an unrecognized non-2xx response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Network wraps err as a NetworkError for operation op.
func Network(op string, err error) error {
	return &NetworkError{Op: op, Err: err}
}

// ErrNotFound marks an absent resource.
var ErrNotFound = errors.New("resource not found")

// NotFound builds a wrapped not-found error naming the resource.
func NotFound(resource string) error {
	return fmt.Errorf("%s: %w", resource, ErrNotFound)
}
