package llm

import (
	"context"
	"errors"
	"time"
)

// ErrRetriesExhausted is returned when every attempt against the model
// provider failed with a transient error. It wraps the last underlying error.
var ErrRetriesExhausted = errors.New("model retries exhausted")

// ErrInvalidResponse is returned when the provider answered but the response
// body did not match the requested shape. Never retried.
var ErrInvalidResponse = errors.New("model response failed validation")

// Schema describes the JSON schema a structured response must conform to.
type Schema struct {
	Name       string
	Definition map[string]interface{}
}

// Gateway defines the three request shapes the pipeline stages use against a
// generative model provider. Implementations retry transient provider
// failures with exponential backoff; non-transient failures propagate
// immediately.
type Gateway interface {
	// Text sends a conversation and returns the raw response text.
	Text(ctx context.Context, system, user string) (string, error)

	// JSON sends a conversation in JSON mode and returns the response text,
	// guaranteed to contain a well-formed JSON object.
	JSON(ctx context.Context, system, user string) (string, error)

	// Structured sends a conversation with a schema directive and decodes the
	// response into out. A response that fails to decode yields
	// ErrInvalidResponse.
	Structured(ctx context.Context, system, user string, schema Schema, out interface{}) error
}

// RetryPolicy is the backoff budget applied to each provider call:
// exponential growth from MinWait, capped at MaxWait, at most MaxAttempts
// total attempts.
type RetryPolicy struct {
	MaxAttempts int
	MinWait     time.Duration
	MaxWait     time.Duration
}

// DefaultRetryPolicy matches the configuration defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		MinWait:     250 * time.Millisecond,
		MaxWait:     10 * time.Second,
	}
}
