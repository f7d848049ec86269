package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable indicates the model provider is unreachable.
	ErrProviderUnavailable = errors.New("llm provider unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	// ErrProviderRejected indicates a non-retryable 4xx from the provider,
	// usually a bad key or an invalid parameter.
	ErrProviderRejected = errors.New("llm provider rejected request")

	// ErrMissingAPIKey indicates a hosted provider was selected without a key.
	ErrMissingAPIKey = errors.New("llm api key is not set")
)

// statusError is a non-200 HTTP response from a provider.
type statusError struct {
	Provider Provider
	Code     int
	Body     string
}

func (e *statusError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.Code, body)
}

// retryable reports whether another attempt could succeed. Rate limits and
// server errors are retried; other statuses are not.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.Code == 429 || se.Code >= 500
	}
	return true
}
