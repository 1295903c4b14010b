package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailInUse         = errors.New("email already in use")
	ErrDelivery           = errors.New("verification email delivery failed")
	ErrNotFound           = errors.New("username or verification code not found")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotVerified = errors.New("account not verified")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError lista los problemas de la entrada por campo.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// DeliveryError se devuelve cuando la cuenta quedó guardada pero el correo no salió.
// El usuario puede reintentar el registro para recibir un código nuevo.
type DeliveryError struct {
	Username string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %v", ErrDelivery.Error(), e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func (e *DeliveryError) Is(target error) bool {
	return target == ErrDelivery
}
