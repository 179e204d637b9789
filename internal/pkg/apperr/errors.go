// Package apperr defines the error taxonomy shared by every storefront
// component. Handlers translate these into the JSON envelope with
// StatusCode and Code; anything that is not an *Error is reported as an
// internal error without leaking its text.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindPaymentInit    Kind = "payment_init"
	KindInternal       Kind = "internal"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Code    string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status for the error kind.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string, details map[string]any) *Error {
	return &Error{Kind: KindValidation, Message: msg, Code: "VALIDATION_ERROR", Details: details}
}

func NotFound(msg string) *Error {
	if msg == "" {
		msg = "Resource not found"
	}
	return &Error{Kind: KindNotFound, Message: msg, Code: "NOT_FOUND"}
}

func Authentication(msg string) *Error {
	if msg == "" {
		msg = "Authentication failed"
	}
	return &Error{Kind: KindAuthentication, Message: msg, Code: "AUTH_ERROR"}
}

func Authorization(msg string) *Error {
	if msg == "" {
		msg = "Insufficient permissions"
	}
	return &Error{Kind: KindAuthorization, Message: msg, Code: "AUTHZ_ERROR"}
}

// PaymentInit reports a failed hand-off to the payment gateway.
func PaymentInit(msg string, details map[string]any, cause error) *Error {
	return &Error{Kind: KindPaymentInit, Message: msg, Code: "PAYMENT_INIT_ERROR", Details: details, Err: cause}
}

func Internal(msg string, cause error) *Error {
	if msg == "" {
		msg = "Internal server error"
	}
	return &Error{Kind: KindInternal, Message: msg, Code: "INTERNAL_ERROR", Err: cause}
}

// From extracts an *Error from err's chain. Unclassified errors come back
// as an internal error wrapping err.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("", err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
