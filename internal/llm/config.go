package llm

import (
	"fmt"
	"os"
	"strconv"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskFullPlan       TaskType = "full_plan"
	TaskRegenerateTask TaskType = "regenerate_task"
	TaskPlayground     TaskType = "playground"
)

// Provider selects the model backend.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutMs   int     `yaml:"timeout_ms"` // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Provider   Provider                `yaml:"provider"`
	LogCalls   bool                    `yaml:"log_calls"`
	Endpoint   string                  `yaml:"endpoint"`
	Model      string                  `yaml:"model"`
	APIKey     string                  `yaml:"api_key"`
	TimeoutMs  int                     `yaml:"timeout_ms"`
	MaxRetries int                     `yaml:"max_retries"`
	Tasks      map[TaskType]TaskConfig `yaml:"tasks"`
}

// DefaultConfig returns an LLMConfig with sensible defaults. The provider
// defaults to OpenAI chat completions with gpt-4o.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Provider:   ProviderOpenAI,
		Endpoint:   DefaultEndpoint(ProviderOpenAI),
		Model:      DefaultModel(ProviderOpenAI),
		TimeoutMs:  60000,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskFullPlan:       {Temperature: 1.0, MaxTokens: 4096, TimeoutMs: 90000},
			TaskRegenerateTask: {Temperature: 1.0, MaxTokens: 1024, TimeoutMs: 30000},
			TaskPlayground:     {Temperature: 1.0, MaxTokens: 4096, TimeoutMs: 60000},
		},
	}
}

// DefaultEndpoint returns the base URL used when none is configured. Gemini
// uses the SDK default.
func DefaultEndpoint(p Provider) string {
	switch p {
	case ProviderOllama:
		return "http://localhost:11434"
	case ProviderOpenAI:
		return "https://api.openai.com/v1"
	default:
		return ""
	}
}

func DefaultModel(p Provider) string {
	switch p {
	case ProviderOllama:
		return "llama3.2"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "gpt-4o"
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	return ApplyEnv(DefaultConfig())
}

// ApplyEnv overlays GOALPLAN_LLM_* variables on cfg. Switching provider
// also switches endpoint and model unless those are set explicitly.
func ApplyEnv(cfg LLMConfig) LLMConfig {
	if v := os.Getenv("GOALPLAN_LLM_PROVIDER"); v != "" && Provider(v) != cfg.Provider {
		cfg.Provider = Provider(v)
		cfg.Endpoint = DefaultEndpoint(cfg.Provider)
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if v := os.Getenv("GOALPLAN_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("GOALPLAN_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("GOALPLAN_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("GOALPLAN_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	} else if cfg.APIKey == "" {
		cfg.APIKey = providerKeyFromEnv(cfg.Provider)
	}
	if v := os.Getenv("GOALPLAN_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("GOALPLAN_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	applyTaskTimeoutEnv(&cfg, TaskFullPlan, "GOALPLAN_LLM_FULL_PLAN_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskRegenerateTask, "GOALPLAN_LLM_REGENERATE_TASK_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskPlayground, "GOALPLAN_LLM_PLAYGROUND_TIMEOUT_MS")

	return cfg
}

func providerKeyFromEnv(p Provider) string {
	switch p {
	case ProviderOpenAI:
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			return v
		}
		return os.Getenv("OPENAI_KEY")
	case ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	default:
		return ""
	}
}

// Validate checks provider-specific requirements.
func (c LLMConfig) Validate() error {
	switch c.Provider {
	case ProviderOllama:
		if c.Endpoint == "" {
			return fmt.Errorf("llm.endpoint is required for %s", c.Provider)
		}
	case ProviderOpenAI, ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("%w for provider %s", ErrMissingAPIKey, c.Provider)
		}
	default:
		return fmt.Errorf("llm.provider: invalid value %q", c.Provider)
	}
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("llm.timeout_ms must be positive, got %d", c.TimeoutMs)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	if cfg.Tasks == nil {
		cfg.Tasks = map[TaskType]TaskConfig{}
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
