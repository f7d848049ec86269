package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/goalplan/internal/contract"
	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/alexanderramin/goalplan/internal/llm"
)

// PlanGenerator produces candidate tasks from a scoped request. Output is
// well-formed but not trusted; callers validate it.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, req contract.PlanGenerationRequest, params generation.Params) ([]domain.Task, error)
	RegenerateTask(ctx context.Context, req contract.TaskRegenerationRequest, params generation.Params) (domain.Task, error)
}

type planGenerator struct {
	client llm.LLMClient
}

// NewPlanGenerator creates a PlanGenerator backed by an LLM client.
func NewPlanGenerator(client llm.LLMClient) PlanGenerator {
	return &planGenerator{client: client}
}

func (g *planGenerator) GeneratePlan(ctx context.Context, req contract.PlanGenerationRequest, params generation.Params) ([]domain.Task, error) {
	schema, err := contract.SchemaFor(params.Schema)
	if err != nil {
		return nil, err
	}

	resp, err := g.call(ctx, llm.TaskFullPlan, planPrompt(schema.Version()), req, params, "task_plan", schema.PlanJSONSchema())
	if err != nil {
		return nil, err
	}

	tasks, err := llm.DecodeOutput(resp.Text, schema.DecodePlan)
	if err != nil {
		return nil, generationError(err)
	}
	return tasks, nil
}

func (g *planGenerator) RegenerateTask(ctx context.Context, req contract.TaskRegenerationRequest, params generation.Params) (domain.Task, error) {
	schema, err := contract.SchemaFor(params.Schema)
	if err != nil {
		return domain.Task{}, err
	}

	resp, err := g.call(ctx, llm.TaskRegenerateTask, regeneratePrompt(schema.Version()), req, params, "task_regeneration", schema.TaskJSONSchema())
	if err != nil {
		return domain.Task{}, err
	}

	task, err := llm.DecodeOutput(resp.Text, schema.DecodeTask)
	if err != nil {
		return domain.Task{}, generationError(err)
	}
	return task, nil
}

func (g *planGenerator) call(
	ctx context.Context,
	task llm.TaskType,
	systemPrompt string,
	payload any,
	params generation.Params,
	schemaName string,
	jsonSchema map[string]any,
) (*llm.GenerateResponse, error) {
	userPrompt, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding generation payload: %w", err)
	}

	resp, err := g.client.Generate(ctx, GenerateRequestFor(task, systemPrompt, string(userPrompt), params, schemaName, jsonSchema))
	if err != nil {
		return nil, generationError(err)
	}
	return resp, nil
}

// GenerateRequestFor maps explicit params onto an LLM request.
func GenerateRequestFor(
	task llm.TaskType,
	systemPrompt, userPrompt string,
	params generation.Params,
	schemaName string,
	jsonSchema map[string]any,
) llm.GenerateRequest {
	req := llm.GenerateRequest{
		Task:             task,
		SystemPrompt:     systemPrompt,
		UserPrompt:       userPrompt,
		Model:            params.Model,
		Temperature:      &params.Temperature,
		MaxTokens:        &params.MaxTokens,
		TopP:             &params.TopP,
		FrequencyPenalty: &params.FrequencyPenalty,
		PresencePenalty:  &params.PresencePenalty,
		Seed:             params.Seed,
	}
	switch params.StructuredOutput {
	case generation.StructuredJSONSchema:
		req.ResponseFormat = &llm.ResponseFormat{Type: "json_schema", Name: schemaName, Schema: jsonSchema}
	case generation.StructuredJSONObject:
		req.ResponseFormat = &llm.ResponseFormat{Type: "json_object"}
	}
	return req
}

// generationError maps LLM failures onto the domain's retryable generation
// errors while keeping the original cause in the chain.
func generationError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrGenerationTimeout, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrGenerationService, err)
	}
}
