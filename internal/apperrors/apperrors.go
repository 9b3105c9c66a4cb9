package apperrors

import (
	"errors"
	"fmt"
)

// AppError is the structured error returned by the gateway and services.
// Code follows HTTP status semantics.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// AsAppError returns the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Kind is the coarse category shown to the user next to a failed form.
type Kind string

const (
	KindEmail    Kind = "email"
	KindPassword Kind = "password"
	KindSession  Kind = "session"
	KindServer   Kind = "server"
	KindGeneral  Kind = "general"
)

// AuthError is a classified failure. Details carries the raw upstream
// message when there was one.
type AuthError struct {
	Kind    Kind   `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

func (e *AuthError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewAuthError(kind Kind, message string) *AuthError {
	return &AuthError{Kind: kind, Message: message}
}

// AsAuthError returns the first AuthError in err's chain.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

// KindOf reports the kind of a classified error, or KindServer for anything else.
func KindOf(err error) Kind {
	if authErr, ok := AsAuthError(err); ok {
		return authErr.Kind
	}
	return KindServer
}

var ErrNoSession = NewAuthError(KindSession, "No active session")
