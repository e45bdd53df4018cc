package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies engine failures.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit marks an upstream rejection for quota or rate
	// reasons. Retryable at the executor layer.
	ErrorTypeRateLimit
	// ErrorTypeTransient marks a temporary upstream failure (timeout,
	// unavailable). Retryable at the executor layer.
	ErrorTypeTransient
	// ErrorTypeUpstream marks a permanent provider failure. Never retried.
	ErrorTypeUpstream
	// ErrorTypeEmbedding marks an embedding provider failure. Never retried.
	ErrorTypeEmbedding
	// ErrorTypeParse marks unparseable model output. Always recovered with a
	// fallback value before it reaches a caller.
	ErrorTypeParse
	ErrorTypeInvalidInput
)

// EngineError is the error type returned across package boundaries.
type EngineError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.TypeString(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.TypeString(), e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func (e *EngineError) TypeString() string {
	return e.Type.String()
}

// String names the error type the way it appears in logs, metrics tags and
// HTTP error bodies.
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeRateLimit:
		return "RateLimitError"
	case ErrorTypeTransient:
		return "TransientError"
	case ErrorTypeUpstream:
		return "UpstreamError"
	case ErrorTypeEmbedding:
		return "EmbeddingError"
	case ErrorTypeParse:
		return "ParseError"
	case ErrorTypeInvalidInput:
		return "InvalidInputError"
	default:
		return "UnknownError"
	}
}

// NewEngineError creates a new EngineError.
func NewEngineError(errType ErrorType, message string, err error) *EngineError {
	return &EngineError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Type
	}
	return ErrorTypeUnknown
}

var rateLimitIndicators = []string{
	"rate limit",
	"rate_limit",
	"ratelimit",
	"quota",
	"429",
	"too many requests",
	"resource exhausted",
	"resource-exhausted",
	"resource_exhausted",
	"limit exceeded",
}

var transientIndicators = []string{
	"timeout",
	"timed out",
	"deadline exceeded",
	"unavailable",
	"503",
	"504",
	"connection reset",
}

// classifyRetry inspects an upstream error's message and decides whether the
// executor may retry it. The string matching mirrors how provider SDKs
// surface throttling and availability failures.
func classifyRetry(err error) (errType ErrorType, reason string, retryable bool) {
	if err == nil {
		return ErrorTypeUnknown, "", false
	}
	msg := strings.ToLower(err.Error())
	for _, indicator := range rateLimitIndicators {
		if strings.Contains(msg, indicator) {
			return ErrorTypeRateLimit, "rate_limit", true
		}
	}
	for _, indicator := range transientIndicators {
		if strings.Contains(msg, indicator) {
			return ErrorTypeTransient, "transient", true
		}
	}
	return ErrorTypeUpstream, "", false
}
