package generation

import (
	"fmt"

	"github.com/alexanderramin/goalplan/internal/contract"
	"github.com/alexanderramin/goalplan/internal/domain"
)

// StructuredMode selects how a provider is asked to shape its output.
type StructuredMode string

const (
	// StructuredJSONSchema sends the schema adapter's JSON schema.
	StructuredJSONSchema StructuredMode = "json_schema"
	// StructuredJSONObject only asks for a JSON object.
	StructuredJSONObject StructuredMode = "json_object"
	// StructuredNone relies on prompt instructions alone.
	StructuredNone StructuredMode = "none"
)

const (
	DefaultTemperature = 1.0
	DefaultMaxTokens   = 4096
	DefaultTopP        = 1.0
)

// ParamsInput is the partially specified form of Params, as it arrives from
// a request body or a config file. Nil means "not set".
type ParamsInput struct {
	Model            string   `json:"model,omitempty" yaml:"model"`
	Temperature      *float64 `json:"temperature,omitempty" yaml:"temperature"`
	MaxTokens        *int     `json:"max_tokens,omitempty" yaml:"max_tokens"`
	TopP             *float64 `json:"top_p,omitempty" yaml:"top_p"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty" yaml:"frequency_penalty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty" yaml:"presence_penalty"`
	Seed             *int     `json:"seed,omitempty" yaml:"seed"`
	StructuredOutput string   `json:"structured_output,omitempty" yaml:"structured_output"`
	Schema           string   `json:"schema,omitempty" yaml:"schema"`
}

// Params is the explicit per-call tuning for one generation call. It is
// passed by value; nothing in the process holds a mutable copy.
type Params struct {
	Model            string                 `json:"model"`
	Temperature      float64                `json:"temperature"`
	MaxTokens        int                    `json:"max_tokens"`
	TopP             float64                `json:"top_p"`
	FrequencyPenalty float64                `json:"frequency_penalty"`
	PresencePenalty  float64                `json:"presence_penalty"`
	Seed             *int                   `json:"seed,omitempty"`
	StructuredOutput StructuredMode         `json:"structured_output"`
	Schema           contract.SchemaVersion `json:"schema"`
}

// ResolveParams applies the defaults cascade: request > defaults > hardcoded.
func ResolveParams(request, defaults ParamsInput) Params {
	return Params{
		Model: domain.CoalesceStr(request.Model, defaults.Model),
		Temperature: domain.Float64FromPtrWithDefault(
			DefaultTemperature,
			request.Temperature,
			defaults.Temperature,
		),
		MaxTokens: domain.IntFromPtrWithDefault(
			DefaultMaxTokens,
			request.MaxTokens,
			defaults.MaxTokens,
		),
		TopP: domain.Float64FromPtrWithDefault(
			DefaultTopP,
			request.TopP,
			defaults.TopP,
		),
		FrequencyPenalty: domain.Float64FromPtrWithDefault(
			0,
			request.FrequencyPenalty,
			defaults.FrequencyPenalty,
		),
		PresencePenalty: domain.Float64FromPtrWithDefault(
			0,
			request.PresencePenalty,
			defaults.PresencePenalty,
		),
		Seed: domain.FirstNonNil(request.Seed, defaults.Seed),
		StructuredOutput: StructuredMode(domain.CoalesceStr(
			request.StructuredOutput,
			defaults.StructuredOutput,
			string(StructuredJSONSchema),
		)),
		Schema: contract.SchemaVersion(domain.CoalesceStr(
			request.Schema,
			defaults.Schema,
			string(contract.SchemaFlatV1),
		)),
	}
}

// Validate checks every field against the ranges the providers accept.
func (p Params) Validate() error {
	var errs []error
	if p.Temperature < 0 || p.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature: must be in [0,2], got %g", p.Temperature))
	}
	if p.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_tokens: must be positive, got %d", p.MaxTokens))
	}
	if p.TopP <= 0 || p.TopP > 1 {
		errs = append(errs, fmt.Errorf("top_p: must be in (0,1], got %g", p.TopP))
	}
	if p.FrequencyPenalty < -2 || p.FrequencyPenalty > 2 {
		errs = append(errs, fmt.Errorf("frequency_penalty: must be in [-2,2], got %g", p.FrequencyPenalty))
	}
	if p.PresencePenalty < -2 || p.PresencePenalty > 2 {
		errs = append(errs, fmt.Errorf("presence_penalty: must be in [-2,2], got %g", p.PresencePenalty))
	}
	switch p.StructuredOutput {
	case StructuredJSONSchema, StructuredJSONObject, StructuredNone:
	default:
		errs = append(errs, fmt.Errorf("structured_output: invalid value %q", p.StructuredOutput))
	}
	if _, err := contract.SchemaFor(p.Schema); err != nil {
		errs = append(errs, fmt.Errorf("schema: %w", err))
	}
	return joinParamErrors(errs)
}

// ParamsError lists every invalid field.
type ParamsError struct {
	Errors []error
}

func (e *ParamsError) Error() string {
	msg := "invalid generation params"
	for _, err := range e.Errors {
		msg += "; " + err.Error()
	}
	return msg
}

func (e *ParamsError) Unwrap() []error { return e.Errors }

func joinParamErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &ParamsError{Errors: errs}
}
