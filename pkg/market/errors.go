package market

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure surfaced to API callers.
type Kind string

const (
	KindInput       Kind = "input"
	KindCredential  Kind = "credential"
	KindRateLimited Kind = "rate_limited"
	KindUpstream    Kind = "upstream"
	KindNotFound    Kind = "not_found"
	KindNetwork     Kind = "network"
)

// Error is the typed failure every orchestrator returns. Status is the HTTP
// status the API responds with and Details carries the upstream payload.
type Error struct {
	Kind     Kind
	Status   int
	Message  string
	Details  any
	Provider string

	cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.cause != nil {
		return fmt.Sprintf("%s (%d): %v", msg, e.Status, e.cause)
	}
	return fmt.Sprintf("%s (%d)", msg, e.Status)
}

func (e *Error) Unwrap() error { return e.cause }

// WithMessage returns a copy carrying a caller-facing message.
func (e *Error) WithMessage(msg string) *Error {
	out := *e
	out.Message = msg
	return &out
}

// InputError reports an invalid request parameter.
func InputError(msg string) *Error {
	return &Error{Kind: KindInput, Status: http.StatusBadRequest, Message: msg}
}

// CredentialError reports a missing provider credential. No network call is made.
func CredentialError(provider, envName string) *Error {
	return &Error{
		Kind:     KindCredential,
		Status:   http.StatusInternalServerError,
		Message:  fmt.Sprintf("Missing %s", envName),
		Provider: provider,
	}
}

// NotFoundError reports that no provider produced usable data.
func NotFoundError(msg string, details any) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg, Details: details}
}

// RateLimitedError reports an upstream quota notice.
func RateLimitedError(provider, msg string, details any) *Error {
	return &Error{
		Kind:     KindRateLimited,
		Status:   http.StatusTooManyRequests,
		Message:  msg,
		Details:  details,
		Provider: provider,
	}
}

// UpstreamError reports a non-success provider response.
func UpstreamError(provider string, status int, msg string, details any) *Error {
	if status < http.StatusBadRequest {
		status = http.StatusBadGateway
	}
	return &Error{Kind: KindUpstream, Status: status, Message: msg, Details: details, Provider: provider}
}

// NetworkError wraps a transport failure. Callers only ever see "Server error".
func NetworkError(provider string, err error) *Error {
	return &Error{
		Kind:     KindNetwork,
		Status:   http.StatusInternalServerError,
		Message:  "Server error",
		Provider: provider,
		cause:    err,
	}
}

// FromEnvelope converts a failed envelope into a typed error, keeping the
// upstream status and body.
func FromEnvelope(provider, msg string, env Envelope) *Error {
	details := env.Details()
	switch env.Status {
	case http.StatusTooManyRequests:
		return RateLimitedError(provider, msg, details)
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: env.Status, Message: msg, Details: details, Provider: provider}
	default:
		return UpstreamError(provider, env.Status, msg, details)
	}
}

// AsError extracts a typed error, treating anything else as a network failure.
func AsError(provider string, err error) *Error {
	if err == nil {
		return nil
	}
	var me *Error
	if errors.As(err, &me) {
		return me
	}
	return NetworkError(provider, err)
}

// IsKind reports whether err is a typed error of the given kind.
func IsKind(err error, kind Kind) bool {
	var me *Error
	return errors.As(err, &me) && me.Kind == kind
}
