package intelligence

import (
	"context"

	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/alexanderramin/goalplan/internal/llm"
)

// Playground runs prompts without decoding or validating the output.
type Playground interface {
	Run(ctx context.Context, req generation.PromptRun) (*generation.PromptResult, error)
}

type playground struct {
	client llm.LLMClient
}

func NewPlayground(client llm.LLMClient) Playground {
	return &playground{client: client}
}

func (p *playground) Run(ctx context.Context, req generation.PromptRun) (*generation.PromptResult, error) {
	system := req.SystemPrompt
	if system == "" {
		system = DefaultPlaygroundSystemPrompt()
	}

	// Structured output needs a schema; the playground only asks for JSON.
	params := req.Params
	if params.StructuredOutput == generation.StructuredJSONSchema {
		params.StructuredOutput = generation.StructuredJSONObject
	}

	resp, err := p.client.Generate(ctx, GenerateRequestFor(llm.TaskPlayground, system, req.UserMessage, params, "", nil))
	if err != nil {
		return nil, generationError(err)
	}

	return &generation.PromptResult{
		Content:      resp.Text,
		Model:        resp.Model,
		FinishReason: resp.FinishReason,
		Usage: generation.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		LatencyMs:    resp.LatencyMs,
		Params:       req.Params,
		SystemPrompt: system,
		UserMessage:  req.UserMessage,
	}, nil
}
