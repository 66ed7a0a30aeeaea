// Package errorsx implements the closed result/error taxonomy shared by the
// authorization client and both host adapters.
package errorsx

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of outcomes an authorization operation can produce.
// It doubles as a control-flow discriminant (switch on Kind) and, via
// String, as a log field value.
type Kind int

const (
	Ok Kind = iota
	Allowed
	Denied
	Error
	ConfigError
	NetworkError
	AuthError
	TimeoutError
	InvalidRequest
	MemoryError
)

func (k Kind) String() string {
	switch k {
	case Ok:
		return "ok"
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	case Error:
		return "error"
	case ConfigError:
		return "config_error"
	case NetworkError:
		return "network_error"
	case AuthError:
		return "auth_error"
	case TimeoutError:
		return "timeout_error"
	case InvalidRequest:
		return "invalid_request"
	case MemoryError:
		return "memory_error"
	default:
		return "unknown"
	}
}

// Retryable reports whether resilience.Retry should be attempted for this
// kind. Only transport-layer failures are retryable; a parsed decision
// (Allowed/Denied) or an authentication failure never is.
func (k Kind) Retryable() bool {
	return k == NetworkError || k == TimeoutError
}

// ServiceError is a structured error carrying a Kind, an HTTP status (when
// the error originated from a response), and optional diagnostic details.
// Details must never hold a token, header value, or other secret; callers
// populating Details are expected to route strings through
// internal/redaction first.
type ServiceError struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func New(kind Kind, message string) *ServiceError {
	return &ServiceError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Err: err}
}

// Config-layer constructors.

func MissingField(field string) *ServiceError {
	return New(ConfigError, "missing required configuration field").WithDetails("field", field)
}

func InvalidField(field, reason string) *ServiceError {
	return New(ConfigError, "invalid configuration field").
		WithDetails("field", field).
		WithDetails("reason", reason)
}

func OutOfRange(field string, min, max interface{}) *ServiceError {
	return New(ConfigError, "configuration value out of range").
		WithDetails("field", field).
		WithDetails("min", min).
		WithDetails("max", max)
}

// Client-layer constructors.

func Network(err error) *ServiceError {
	return Wrap(NetworkError, "network transport failed", err)
}

func Timeout(operation string) *ServiceError {
	return New(TimeoutError, "operation timed out").WithDetails("operation", operation)
}

func Unauthorized(message string) *ServiceError {
	return New(AuthError, message).WithDetails("http_status", http.StatusUnauthorized)
}

func BadRequest(message string) *ServiceError {
	return New(InvalidRequest, message).WithDetails("http_status", http.StatusBadRequest)
}

func ServerError(message string, status int) *ServiceError {
	return New(Error, message).WithDetails("http_status", status)
}

// FromHTTPStatus maps a decision-service HTTP status onto a Kind per the
// wire protocol's status-to-kind table. It never returns Allowed/Denied —
// those are determined only by the parsed decisions array.
func FromHTTPStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return AuthError
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return InvalidRequest
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return TimeoutError
	case status >= 500:
		return NetworkError
	case status >= 200 && status < 300:
		return Ok
	default:
		return Error
	}
}

// Helper functions mirroring errors.As-based extraction.

func IsServiceError(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr)
}

func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

func GetKind(err error) Kind {
	if svcErr := GetServiceError(err); svcErr != nil {
		return svcErr.Kind
	}
	return Error
}
