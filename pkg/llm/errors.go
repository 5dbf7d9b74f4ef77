package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrorKind classifies a model-path failure. Orchestration switches on the
// kind rather than inspecting error message text.
type ErrorKind string

const (
	// KindConfig means the model is not configured (missing key or endpoint).
	KindConfig ErrorKind = "config"
	// KindAuth means the provider rejected the credential.
	KindAuth ErrorKind = "auth"
	// KindEndpoint means the provider was unreachable or returned a server error.
	KindEndpoint ErrorKind = "endpoint"
	// KindTimeout means the bounded call deadline elapsed.
	KindTimeout ErrorKind = "timeout"
	// KindRateLimit means the provider throttled the request.
	KindRateLimit ErrorKind = "rate_limit"
	// KindContract means the response could not be parsed against the
	// expected schema.
	KindContract ErrorKind = "contract"
	// KindUnknown covers everything else.
	KindUnknown ErrorKind = "unknown"
)

// Error is a structured model-path error.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	parts := []string{string(e.Kind)}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a structured model-path error.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Classify wraps an arbitrary client error into a structured *Error.
// Status codes are taken from the provider SDK's typed errors where
// available instead of being parsed out of message strings.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Message: "request deadline exceeded", Cause: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Message: "network timeout", Cause: err}
		}
		return &Error{Kind: KindEndpoint, Message: "connection failed", Cause: err}
	}

	return &Error{Kind: KindUnknown, Message: "model request failed", Cause: err}
}

func classifyStatus(status int, cause error) *Error {
	e := &Error{StatusCode: status, Cause: cause}
	switch {
	case status == 401 || status == 403:
		e.Kind, e.Message = KindAuth, "authentication failed"
	case status == 429:
		e.Kind, e.Message = KindRateLimit, "rate limited"
	case status >= 500:
		e.Kind, e.Message = KindEndpoint, "server error"
	case status >= 400:
		e.Kind, e.Message = KindEndpoint, "request rejected"
	default:
		e.Kind, e.Message = KindUnknown, "model request failed"
	}
	return e
}

// KindOf extracts the ErrorKind from an error, defaulting to KindUnknown.
func KindOf(err error) ErrorKind {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	return KindUnknown
}
