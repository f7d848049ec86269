package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// geminiClient implements LLMClient with the Google GenAI SDK.
type geminiClient struct {
	cfg      LLMConfig
	client   *genai.Client
	observer Observer
}

// NewGeminiClient creates an LLMClient for the Gemini API. A configured
// endpoint replaces the SDK's base URL.
func NewGeminiClient(ctx context.Context, cfg LLMConfig, observer Observer) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for provider %s", ErrMissingAPIKey, ProviderGemini)
	}
	if observer == nil {
		observer = NoopObserver{}
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(),
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &geminiClient{cfg: cfg, client: client, observer: observer}, nil
}

func (c *geminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	p := c.cfg.resolve(req)

	temp := float32(p.Temperature)
	gc := &genai.GenerateContentConfig{
		Temperature:      &temp,
		MaxOutputTokens:  int32(p.MaxTokens),
		TopP:             float32Ptr(req.TopP),
		FrequencyPenalty: float32Ptr(req.FrequencyPenalty),
		PresencePenalty:  float32Ptr(req.PresencePenalty),
	}
	if req.SystemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.Seed != nil {
		seed := int32(*req.Seed)
		gc.Seed = &seed
	}
	if rf := req.ResponseFormat; rf != nil && (rf.Type == "json_schema" || rf.Type == "json_object") {
		gc.ResponseMIMEType = "application/json"
		if rf.Type == "json_schema" && rf.Schema != nil {
			gc.ResponseJsonSchema = rf.Schema
		}
	}

	contents := []*genai.Content{genai.NewContentFromText(req.UserPrompt, genai.RoleUser)}

	return generateWithRetry(ctx, c.cfg, req, p.Model, c.observer, func(ctx context.Context) (*GenerateResponse, error) {
		resp, err := c.client.Models.GenerateContent(ctx, p.Model, contents, gc)
		if err != nil {
			return nil, geminiError(err)
		}
		out := &GenerateResponse{
			Text:  resp.Text(),
			Model: resp.ModelVersion,
		}
		if len(resp.Candidates) > 0 {
			out.FinishReason = string(resp.Candidates[0].FinishReason)
		}
		if u := resp.UsageMetadata; u != nil {
			out.Usage = Usage{
				PromptTokens:     int(u.PromptTokenCount),
				CompletionTokens: int(u.CandidatesTokenCount),
				TotalTokens:      int(u.TotalTokenCount),
			}
		}
		return out, nil
	})
}

// geminiError maps SDK API errors onto statusError so retry decisions match
// the HTTP providers.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &statusError{Provider: ProviderGemini, Code: apiErr.Code, Body: apiErr.Message}
	}
	return err
}

func (c *geminiClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_, err := c.client.Models.Get(ctx, c.cfg.Model, nil)
	return err == nil
}
