package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alexanderramin/goalplan/internal/cli/formatter"
	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	outputAuto  = "auto"
	outputTable = "table"
	outputJSON  = "json"
)

// jsonOutput reports whether results should be machine readable. In auto
// mode a terminal gets tables and a pipe gets JSON.
func (a *App) jsonOutput() bool {
	switch a.output {
	case outputJSON:
		return true
	case outputTable:
		return false
	}
	return a.IsInteractive == nil || !a.IsInteractive()
}

// emit writes v as indented JSON or as the table produced by render.
func (a *App) emit(w io.Writer, v any, render func() string) error {
	if a.jsonOutput() {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprint(w, render())
	return err
}

// spin shows a spinner on stderr for interactive table output only.
func (a *App) spin(cmd *cobra.Command, message string) func() {
	if a.jsonOutput() {
		return func() {}
	}
	return formatter.StartSpinner(cmd.ErrOrStderr(), message)
}

// paramsFlags binds the per-call generation params. Only flags the user sets
// end up in the ParamsInput; the rest fall through to config defaults.
type paramsFlags struct {
	model            string
	temperature      float64
	maxTokens        int
	topP             float64
	frequencyPenalty float64
	presencePenalty  float64
	seed             int
	structuredOutput string
	schema           string
}

func (p *paramsFlags) register(f *pflag.FlagSet) {
	f.StringVar(&p.model, "model", "", "Model override")
	f.Float64Var(&p.temperature, "temperature", generation.DefaultTemperature, "Sampling temperature [0,2]")
	f.IntVar(&p.maxTokens, "max-tokens", generation.DefaultMaxTokens, "Maximum completion tokens")
	f.Float64Var(&p.topP, "top-p", generation.DefaultTopP, "Nucleus sampling (0,1]")
	f.Float64Var(&p.frequencyPenalty, "frequency-penalty", 0, "Frequency penalty [-2,2]")
	f.Float64Var(&p.presencePenalty, "presence-penalty", 0, "Presence penalty [-2,2]")
	f.IntVar(&p.seed, "seed", 0, "Sampling seed")
	f.StringVar(&p.structuredOutput, "structured-output", "", "Structured output mode (json_schema|json_object|none)")
	f.StringVar(&p.schema, "schema", "", "Output schema (flat_v1|nested_v2)")
}

func (p *paramsFlags) input(cmd *cobra.Command) generation.ParamsInput {
	f := cmd.Flags()
	in := generation.ParamsInput{
		Model:            p.model,
		StructuredOutput: p.structuredOutput,
		Schema:           p.schema,
	}
	if f.Changed("temperature") {
		in.Temperature = &p.temperature
	}
	if f.Changed("max-tokens") {
		in.MaxTokens = &p.maxTokens
	}
	if f.Changed("top-p") {
		in.TopP = &p.topP
	}
	if f.Changed("frequency-penalty") {
		in.FrequencyPenalty = &p.frequencyPenalty
	}
	if f.Changed("presence-penalty") {
		in.PresencePenalty = &p.presencePenalty
	}
	if f.Changed("seed") {
		in.Seed = &p.seed
	}
	return in
}
