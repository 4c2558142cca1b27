package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{NotFound("missing"), http.StatusNotFound},
		{Validation("bad input"), http.StatusBadRequest},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("not yours"), http.StatusForbidden},
		{Upstream("graph down", errors.New("timeout")), http.StatusBadGateway},
		{Conflict("already published"), http.StatusConflict},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusOf(tc.err); got != tc.status {
			t.Errorf("StatusOf(%v) = %d, want %d", tc.err, got, tc.status)
		}
	}
}

func TestStatusOfWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFound("missing"))
	if got := StatusOf(wrapped); got != http.StatusNotFound {
		t.Errorf("StatusOf(wrapped) = %d, want 404", got)
	}
}

func TestMessageOfHidesInternalCause(t *testing.T) {
	err := Internal(errors.New("dial tcp 10.0.0.5:27017: connection refused"))
	if got := MessageOf(err); got != "internal server error" {
		t.Errorf("MessageOf leaked internals: %q", got)
	}

	if got := MessageOf(Validation("month must be formatted YYYY-MM")); got != "month must be formatted YYYY-MM" {
		t.Errorf("MessageOf = %q", got)
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("root cause")
	err := Upstream("call failed", cause)
	if !errors.Is(err, cause) {
		t.Error("cause lost through wrapping")
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", Validation("dup"))
	if !IsKind(err, KindValidation) {
		t.Error("IsKind missed wrapped validation error")
	}
	if IsKind(err, KindNotFound) {
		t.Error("IsKind matched wrong kind")
	}
	if IsKind(errors.New("plain"), KindValidation) {
		t.Error("IsKind matched untyped error")
	}
}
