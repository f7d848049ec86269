package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ResponseFormat asks the provider for structured output. Schema is only
// used when Type is "json_schema".
type ResponseFormat struct {
	Type   string
	Name   string
	Schema map[string]any
}

// GenerateRequest holds the parameters for an LLM generation call. Nil
// tuning fields fall back to the task defaults in LLMConfig.
type GenerateRequest struct {
	Task             TaskType
	SystemPrompt     string
	UserPrompt       string
	Model            string // empty uses LLMConfig.Model
	Temperature      *float64
	MaxTokens        *int
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Seed             *int
	ResponseFormat   *ResponseFormat
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Text         string
	Model        string
	FinishReason string
	Usage        Usage
	LatencyMs    int64
	Attempts     int
}

// LLMClient provides access to a language model for text generation.
type LLMClient interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available checks whether the provider is reachable.
	Available(ctx context.Context) bool
}

// NewClient builds the client for cfg.Provider.
func NewClient(ctx context.Context, cfg LLMConfig, observer Observer) (LLMClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderOllama:
		return NewOllamaClient(cfg, observer), nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, observer), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, observer)
	default:
		return nil, fmt.Errorf("llm.provider: invalid value %q", cfg.Provider)
	}
}

// callParams is a GenerateRequest with task defaults applied.
type callParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

func (c LLMConfig) resolve(req GenerateRequest) callParams {
	tc := c.Tasks[req.Task]
	p := callParams{
		Model:       c.Model,
		Temperature: tc.Temperature,
		MaxTokens:   tc.MaxTokens,
	}
	if req.Model != "" {
		p.Model = req.Model
	}
	if req.Temperature != nil {
		p.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		p.MaxTokens = *req.MaxTokens
	}
	return p
}

type attemptFunc func(ctx context.Context) (*GenerateResponse, error)

// generateWithRetry runs attempt under the task timeout, retrying transient
// failures up to cfg.MaxRetries times, and reports the outcome to observer.
func generateWithRetry(
	ctx context.Context,
	cfg LLMConfig,
	req GenerateRequest,
	model string,
	observer Observer,
	attempt attemptFunc,
) (*GenerateResponse, error) {
	start := time.Now()

	timeoutMs := cfg.TaskTimeout(req.Task)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	var lastErr error
	attempts := 0
	for attempts < 1+cfg.MaxRetries {
		attempts++
		resp, err := attempt(ctx)
		if err == nil {
			resp.LatencyMs = time.Since(start).Milliseconds()
			resp.Attempts = attempts
			if resp.Model == "" {
				resp.Model = model
			}
			observer.OnCallComplete(LLMCallEvent{
				Task:             req.Task,
				Provider:         cfg.Provider,
				Model:            resp.Model,
				LatencyMs:        resp.LatencyMs,
				Attempts:         attempts,
				Success:          true,
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
			})
			return resp, nil
		}
		lastErr = err

		// Don't retry on context cancellation/timeout
		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}

	finalErr := classify(ctx, lastErr)
	observer.OnCallComplete(LLMCallEvent{
		Task:      req.Task,
		Provider:  cfg.Provider,
		Model:     model,
		LatencyMs: time.Since(start).Milliseconds(),
		Attempts:  attempts,
		Success:   false,
		ErrorCode: errorCode(finalErr),
	})
	return nil, finalErr
}

func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrTimeout
	case ctx.Err() != nil:
		return fmt.Errorf("llm request canceled: %w", ctx.Err())
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	case !retryable(err):
		return fmt.Errorf("%w: %v", ErrProviderRejected, err)
	default:
		return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrProviderUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrProviderRejected):
		return "REJECTED"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.Is(err, context.Canceled):
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

func float32Ptr(f *float64) *float32 {
	if f == nil {
		return nil
	}
	v := float32(*f)
	return &v
}
