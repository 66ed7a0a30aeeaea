package errorsx

import (
	"errors"
	"net/http"
	"testing"
)

func TestFromHTTPStatusMapping(t *testing.T) {
	cases := map[int]Kind{
		http.StatusOK:                  Ok,
		http.StatusUnauthorized:        AuthError,
		http.StatusForbidden:           AuthError,
		http.StatusBadRequest:          InvalidRequest,
		http.StatusGatewayTimeout:      TimeoutError,
		http.StatusInternalServerError: NetworkError,
		http.StatusBadGateway:          NetworkError,
	}
	for status, want := range cases {
		if got := FromHTTPStatus(status); got != want {
			t.Errorf("FromHTTPStatus(%d) = %v, want %v", status, got, want)
		}
	}
}

func TestRetryable(t *testing.T) {
	retryable := []Kind{NetworkError, TimeoutError}
	notRetryable := []Kind{Ok, Allowed, Denied, AuthError, ConfigError, InvalidRequest, MemoryError}

	for _, k := range retryable {
		if !k.Retryable() {
			t.Errorf("%v.Retryable() = false, want true", k)
		}
	}
	for _, k := range notRetryable {
		if k.Retryable() {
			t.Errorf("%v.Retryable() = true, want false", k)
		}
	}
}

func TestServiceErrorUnwrapAndExtraction(t *testing.T) {
	inner := errors.New("dial failed")
	wrapped := Network(inner)

	if !IsServiceError(wrapped) {
		t.Fatal("IsServiceError returned false for a *ServiceError")
	}
	if !errors.Is(errors.Unwrap(wrapped), inner) {
		t.Errorf("Unwrap did not return inner error")
	}
	if got := GetKind(wrapped); got != NetworkError {
		t.Errorf("GetKind = %v, want NetworkError", got)
	}
}
