package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sethvargo/go-retry"
)

// Compile-time interface check
var _ Gateway = (*OpenAI)(nil)

// ChatService defines the interface for making chat completion API calls.
// This abstraction enables testing without calling the real OpenAI API.
type ChatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI implements the model gateway using OpenAI's chat completions API.
type OpenAI struct {
	chat   ChatService
	model  openai.ChatModel
	policy RetryPolicy
}

// NewOpenAI creates a new OpenAI-backed gateway.
func NewOpenAI(apiKey, model string, policy RetryPolicy) *OpenAI {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{
		chat:   client.Chat.Completions,
		model:  openai.ChatModel(model),
		policy: policy,
	}
}

// Text sends a conversation and returns the raw response text.
func (o *OpenAI) Text(ctx context.Context, system, user string) (string, error) {
	return o.complete(ctx, system, user, nil)
}

// JSON sends a conversation in JSON mode. The response is checked to contain
// a well-formed JSON object before it is returned.
func (o *OpenAI) JSON(ctx context.Context, system, user string) (string, error) {
	format := openai.ChatCompletionNewParamsResponseFormatUnion(
		openai.ResponseFormatJSONObjectParam{
			Type: openai.F(openai.ResponseFormatJSONObjectTypeJSONObject),
		},
	)

	content, err := o.complete(ctx, system, user, &format)
	if err != nil {
		return "", err
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return content, nil
}

// Structured sends a conversation with a strict JSON schema directive and
// decodes the response into out.
func (o *OpenAI) Structured(ctx context.Context, system, user string, schema Schema, out interface{}) error {
	format := openai.ChatCompletionNewParamsResponseFormatUnion(
		openai.ResponseFormatJSONSchemaParam{
			Type: openai.F(openai.ResponseFormatJSONSchemaTypeJSONSchema),
			JSONSchema: openai.F(openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   openai.F(schema.Name),
				Schema: openai.F[interface{}](schema.Definition),
				Strict: openai.F(true),
			}),
		},
	)

	content, err := o.complete(ctx, system, user, &format)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return nil
}

// complete performs one chat completion with the gateway's retry policy.
func (o *OpenAI) complete(ctx context.Context, system, user string, format *openai.ChatCompletionNewParamsResponseFormatUnion) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		}),
		Model: openai.F(o.model),
	}
	if format != nil {
		params.ResponseFormat = openai.F(*format)
	}

	var content string
	err := retry.Do(ctx, o.backoff(), func(ctx context.Context) error {
		resp, err := o.chat.New(ctx, params)
		if err != nil {
			if isTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("%w: no choices returned", ErrInvalidResponse)
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		if isTransient(err) {
			return "", fmt.Errorf("%w: %v", ErrRetriesExhausted, err)
		}
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	return content, nil
}

// backoff builds a fresh backoff sequence for one call. MaxAttempts counts
// the initial attempt, so the retry budget is one less.
func (o *OpenAI) backoff() retry.Backoff {
	b := retry.NewExponential(o.policy.MinWait)
	b = retry.WithCappedDuration(o.policy.MaxWait, b)
	b = retry.WithMaxRetries(uint64(o.policy.MaxAttempts-1), b)
	return b
}

// isTransient classifies provider failures. Rate limits, server errors and
// transport errors are retried; auth and malformed-request failures are not.
func isTransient(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode == http.StatusTooManyRequests || apierr.StatusCode >= http.StatusInternalServerError
	}
	if errors.Is(err, ErrInvalidResponse) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Non-API errors are connection-level failures
	return true
}
