// Package config assembles process configuration from an optional YAML file
// and GOALPLAN_* environment variables. Environment wins over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/alexanderramin/goalplan/internal/llm"
	"github.com/alexanderramin/goalplan/internal/logging"
	"github.com/alexanderramin/goalplan/internal/service"
	"github.com/alexanderramin/goalplan/internal/validation"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type ValidationConfig struct {
	DurationToleranceMin int    `yaml:"duration_tolerance_min"`
	DurationPolicy       string `yaml:"duration_policy"`
	RetryOnViolation     bool   `yaml:"retry_on_violation"`
}

type Config struct {
	Server     ServerConfig           `yaml:"server"`
	Logging    logging.Config         `yaml:"logging"`
	LLM        llm.LLMConfig          `yaml:"llm"`
	Validation ValidationConfig       `yaml:"validation"`
	Generation generation.ParamsInput `yaml:"generation"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
			AllowedOrigins:  []string{"*"},
		},
		Logging: logging.DefaultConfig(),
		LLM:     llm.DefaultConfig(),
		Validation: ValidationConfig{
			DurationToleranceMin: int(validation.DefaultDurationTolerance / time.Minute),
			DurationPolicy:       string(validation.DurationSoft),
		},
		Generation: generation.ParamsInput{
			StructuredOutput: string(generation.StructuredJSONSchema),
			Schema:           "flat_v1",
		},
	}
}

// Load reads path (when non-empty) over the defaults, then applies the
// environment. It does not validate; call Validate before use.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := decodeFile(data, &cfg); err != nil {
			return cfg, err
		}
	}
	return ApplyEnv(cfg), nil
}

func decodeFile(data []byte, cfg *Config) error {
	var probe struct {
		LLM struct {
			Provider string `yaml:"provider"`
			Endpoint string `yaml:"endpoint"`
			Model    string `yaml:"model"`
		} `yaml:"llm"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	// A provider switch without an explicit endpoint or model means the new
	// provider's defaults, not the previous provider's.
	p := llm.Provider(probe.LLM.Provider)
	if p != "" {
		if probe.LLM.Endpoint == "" {
			cfg.LLM.Endpoint = llm.DefaultEndpoint(p)
		}
		if probe.LLM.Model == "" {
			cfg.LLM.Model = llm.DefaultModel(p)
		}
	}
	return nil
}

// ApplyEnv overlays GOALPLAN_* variables. LLM variables are handled by
// llm.ApplyEnv.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("GOALPLAN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GOALPLAN_CORS_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("GOALPLAN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GOALPLAN_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("GOALPLAN_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("GOALPLAN_DURATION_POLICY"); v != "" {
		cfg.Validation.DurationPolicy = v
	}
	if v := os.Getenv("GOALPLAN_DURATION_TOLERANCE_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Validation.DurationToleranceMin = n
		}
	}
	if v := os.Getenv("GOALPLAN_RETRY_ON_VIOLATION"); v != "" {
		cfg.Validation.RetryOnViolation, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("GOALPLAN_SCHEMA"); v != "" {
		cfg.Generation.Schema = v
	}
	if v := os.Getenv("GOALPLAN_STRUCTURED_OUTPUT"); v != "" {
		cfg.Generation.StructuredOutput = v
	}
	cfg.LLM = llm.ApplyEnv(cfg.LLM)
	return cfg
}

// Validate checks every section and reports all problems together.
// requireLLM is false for commands that never call a provider.
func (c Config) Validate(requireLLM bool) error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}
	if c.Validation.DurationToleranceMin < 0 {
		errs = append(errs, fmt.Errorf("validation.duration_tolerance_min must not be negative, got %d", c.Validation.DurationToleranceMin))
	}
	if _, err := validation.ParseDurationPolicy(c.Validation.DurationPolicy); err != nil {
		errs = append(errs, fmt.Errorf("validation.duration_policy: invalid value %q", c.Validation.DurationPolicy))
	}
	if err := generation.ResolveParams(c.Generation, generation.ParamsInput{}).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("generation: %w", err))
	}
	if requireLLM {
		if err := c.LLM.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Validator builds the plan validator from the validation section.
func (c Config) Validator() (*validation.Validator, error) {
	policy, err := validation.ParseDurationPolicy(c.Validation.DurationPolicy)
	if err != nil {
		return nil, err
	}
	return validation.New(
		validation.WithDurationTolerance(time.Duration(c.Validation.DurationToleranceMin)*time.Minute),
		validation.WithDurationPolicy(policy),
	), nil
}

// Service derives use-case settings. Use-case deadlines match the LLM task
// timeouts so both layers give up together.
func (c Config) Service() service.Config {
	return service.Config{
		Defaults:          c.Generation,
		PlanTimeout:       millis(c.LLM.TaskTimeout(llm.TaskFullPlan)),
		RegenerateTimeout: millis(c.LLM.TaskTimeout(llm.TaskRegenerateTask)),
		PlaygroundTimeout: millis(c.LLM.TaskTimeout(llm.TaskPlayground)),
		RetryOnViolation:  c.Validation.RetryOnViolation,
	}
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
