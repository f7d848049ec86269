package generation

// PromptRun is a free-form prompt executed with explicit params, outside the
// plan pipeline. An empty SystemPrompt means the default planning prompt.
type PromptRun struct {
	SystemPrompt string
	UserMessage  string
	Params       Params
}

// Usage is the token accounting of one run.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// PromptResult echoes the inputs next to the raw output so runs can be
// compared side by side.
type PromptResult struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	Usage        Usage  `json:"usage"`
	LatencyMs    int64  `json:"latency_ms"`
	Params       Params `json:"config"`
	SystemPrompt string `json:"system_prompt"`
	UserMessage  string `json:"user_message"`
}
