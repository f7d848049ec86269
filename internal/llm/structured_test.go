package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planPayload struct {
	Plan []struct {
		GoalID   string  `json:"goal_id"`
		Estimate float64 `json:"estimated_duration_minutes"`
	} `json:"plan"`
}

var errEmptyPlan = errors.New("plan is empty")

func decodePlan(data []byte) (planPayload, error) {
	var p planPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, err
	}
	if len(p.Plan) == 0 {
		return p, errEmptyPlan
	}
	return p, nil
}

func TestDecodeOutput_CleanJSON(t *testing.T) {
	raw := `{"plan":[{"goal_id":"g1","estimated_duration_minutes":45}]}`
	result, err := DecodeOutput(raw, decodePlan)
	require.NoError(t, err)
	require.Len(t, result.Plan, 1)
	assert.Equal(t, "g1", result.Plan[0].GoalID)
}

func TestDecodeOutput_FencedWithSurroundingText(t *testing.T) {
	raw := "Here is your plan:\n```json\n{\"plan\":[{\"goal_id\":\"g2\"}]}\n```\nGood luck!"
	result, err := DecodeOutput(raw, decodePlan)
	require.NoError(t, err)
	assert.Equal(t, "g2", result.Plan[0].GoalID)
}

func TestDecodeOutput_CommentsAndLeadingDecimals(t *testing.T) {
	raw := `{
	  // first session
	  "plan": [{"goal_id": "g1", /* short */ "estimated_duration_minutes": .5}]
	}`
	result, err := DecodeOutput(raw, decodePlan)
	require.NoError(t, err)
	assert.Equal(t, 0.5, result.Plan[0].Estimate)
}

func TestDecodeOutput_CommentMarkersInsideStrings(t *testing.T) {
	raw := `{"plan":[{"goal_id":"https://example.com/{id}/*x*/ \"q\""}]}`
	result, err := DecodeOutput(raw, decodePlan)
	require.NoError(t, err)
	assert.Equal(t, `https://example.com/{id}/*x*/ "q"`, result.Plan[0].GoalID)
}

func TestDecodeOutput_NoJSON(t *testing.T) {
	_, err := DecodeOutput("I could not build a plan.", decodePlan)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestDecodeOutput_InvalidJSON(t *testing.T) {
	_, err := DecodeOutput(`{"plan": [broken}`, decodePlan)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestDecodeOutput_KeepsDecoderError(t *testing.T) {
	_, err := DecodeOutput(`{"plan":[]}`, decodePlan)
	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.ErrorIs(t, err, errEmptyPlan)
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"negative leading decimal", "```\n{\"task\": {\"x\": -.25}}\n```", `{"task": {"x": -0.25}}`},
		{"array element", `{"xs":[.5, .75]}`, `{"xs":[0.5, 0.75]}`},
		{"line comment", "{\"a\":1 // one\n}", "{\"a\":1 \n}"},
		{"block comment", `{"a":/* x */1}`, `{"a":1}`},
		{"trailing text", `{"a":{"b":2}} and more {"c":3}`, `{"a":{"b":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := CleanJSON("no braces")
	assert.ErrorIs(t, err, ErrInvalidOutput)
	_, err = CleanJSON(`{"a": {"b": 1}`)
	assert.ErrorIs(t, err, ErrInvalidOutput, "unbalanced object")
}
