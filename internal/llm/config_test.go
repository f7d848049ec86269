package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 4096, cfg.Tasks[TaskFullPlan].MaxTokens)
	assert.Equal(t, 1.0, cfg.Tasks[TaskPlayground].Temperature)
}

func TestLoadConfig_TaskTimeoutOverrides(t *testing.T) {
	t.Setenv("GOALPLAN_LLM_TIMEOUT_MS", "9000")
	t.Setenv("GOALPLAN_LLM_FULL_PLAN_TIMEOUT_MS", "120000")
	t.Setenv("GOALPLAN_LLM_REGENERATE_TASK_TIMEOUT_MS", "7000")

	cfg := LoadConfig()

	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 120000, cfg.TaskTimeout(TaskFullPlan))
	assert.Equal(t, 7000, cfg.TaskTimeout(TaskRegenerateTask))
	assert.Equal(t, 60000, cfg.TaskTimeout(TaskPlayground))
	assert.Equal(t, 9000, cfg.TaskTimeout("unknown"), "unknown task uses global timeout")
}

func TestLoadConfig_InvalidTaskTimeoutOverrideIgnored(t *testing.T) {
	t.Setenv("GOALPLAN_LLM_FULL_PLAN_TIMEOUT_MS", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, 90000, cfg.TaskTimeout(TaskFullPlan))
}

func TestLoadConfig_ProviderSwitchResetsEndpointAndModel(t *testing.T) {
	t.Setenv("GOALPLAN_LLM_PROVIDER", "ollama")

	cfg := LoadConfig()

	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.Endpoint)
	assert.Equal(t, "llama3.2", cfg.Model)
	require.NoError(t, cfg.Validate(), "ollama needs no key")
}

func TestLoadConfig_ExplicitModelWinsOverProviderDefault(t *testing.T) {
	t.Setenv("GOALPLAN_LLM_PROVIDER", "gemini")
	t.Setenv("GOALPLAN_LLM_MODEL", "gemini-2.5-pro")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg := LoadConfig()

	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.Equal(t, "g-key", cfg.APIKey)
}

func TestLoadConfig_OpenAIKeyFallbacks(t *testing.T) {
	t.Setenv("GOALPLAN_LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_KEY", "legacy-key")

	cfg := LoadConfig()
	assert.Equal(t, "legacy-key", cfg.APIKey)

	t.Setenv("GOALPLAN_LLM_API_KEY", "explicit")
	assert.Equal(t, "explicit", LoadConfig().APIKey)
}

func TestLLMConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)

	cfg.APIKey = "k"
	assert.NoError(t, cfg.Validate())

	cfg.MaxRetries = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Provider = "bedrock"
	assert.ErrorContains(t, cfg.Validate(), "llm.provider")
}
