// Package apierror defines the typed error kinds every handler maps to an
// HTTP status. Handlers wrap causes instead of catching broadly and
// returning anonymous 500s, so logs keep the structured origin.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API failure.
type Kind int

const (
	// KindInternal is the fallback for unclassified failures.
	KindInternal Kind = iota
	// KindNotFound covers missing users, posts, content and promo codes.
	KindNotFound
	// KindValidation covers malformed input and duplicate promo codes.
	KindValidation
	// KindUnauthorized covers missing or invalid tokens.
	KindUnauthorized
	// KindForbidden covers authenticated but non-admin callers.
	KindForbidden
	// KindUpstream covers failed Stripe/OpenAI/Facebook/database calls.
	KindUpstream
	// KindConflict covers state conflicts, e.g. publishing an
	// already-published post.
	KindConflict
)

// Error carries a kind, a user-facing message and the wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a kinded error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NotFound builds a KindNotFound error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Validation builds a KindValidation error.
func Validation(message string) *Error { return New(KindValidation, message) }

// Unauthorized builds a KindUnauthorized error.
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// Forbidden builds a KindForbidden error.
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// Conflict builds a KindConflict error.
func Conflict(message string) *Error { return New(KindConflict, message) }

// Upstream wraps a failed collaborator call.
func Upstream(message string, cause error) *Error {
	return Wrap(KindUpstream, message, cause)
}

// Internal wraps an unclassified failure.
func Internal(cause error) *Error {
	return Wrap(KindInternal, "internal error", cause)
}

// StatusOf maps an error to its HTTP status code.
func StatusOf(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUpstream:
		return http.StatusBadGateway
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MessageOf returns the user-facing message, hiding internal causes.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return ae.Message
	}
	return "internal server error"
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
