package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexanderramin/goalplan/internal/config"
	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/alexanderramin/goalplan/internal/metrics"
	"github.com/alexanderramin/goalplan/internal/service"
	"github.com/alexanderramin/goalplan/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePlans struct {
	res     *service.GeneratePlanResult
	err     error
	lastReq service.GeneratePlanRequest
}

func (f *fakePlans) Generate(_ context.Context, req service.GeneratePlanRequest) (*service.GeneratePlanResult, error) {
	f.lastReq = req
	return f.res, f.err
}

type fakeRegenerations struct {
	res     *service.RegenerateResult
	err     error
	lastReq service.RegenerateRequest
}

func (f *fakeRegenerations) Regenerate(_ context.Context, req service.RegenerateRequest) (*service.RegenerateResult, error) {
	f.lastReq = req
	return f.res, f.err
}

type fakePlayground struct {
	res     *generation.PromptResult
	err     error
	lastReq service.PlaygroundRequest
}

func (f *fakePlayground) Run(_ context.Context, req service.PlaygroundRequest) (*generation.PromptResult, error) {
	f.lastReq = req
	return f.res, f.err
}

type harness struct {
	plans      *fakePlans
	regens     *fakeRegenerations
	playground *fakePlayground
	handler    http.Handler
}

func newHarness(t *testing.T, mutate func(*Deps, *config.ServerConfig)) *harness {
	t.Helper()
	h := &harness{
		plans:      &fakePlans{},
		regens:     &fakeRegenerations{},
		playground: &fakePlayground{},
	}
	cfg := config.Default().Server
	deps := Deps{
		Plans:         h.plans,
		Regenerations: h.regens,
		Playground:    h.playground,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if mutate != nil {
		mutate(&deps, &cfg)
	}
	h.handler = NewHandler(cfg, deps)
	return h
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

const profileJSON = `{
  "goals": [{"id":"g1","title":"Learn guitar","skill_level":"beginner",
             "timeframe":{"start_date":"2026-02-01","end_date":"2026-02-08"}}],
  "availability": {"weekly_schedule": {"monday":[{"start":"09:00","end":"10:00"}]}}
}`

const existingPlanJSON = `[
  {"goal_id":"g1","date":"2026-02-02","start_time":"09:00","end_time":"09:45",
   "title":"Scales","difficulty":"easy","estimated_duration_minutes":45}
]`

func task() domain.Task {
	return domain.Task{
		GoalID:                   "g1",
		Date:                     domain.MustDate("2026-02-02"),
		StartTime:                domain.MustClock("09:00"),
		EndTime:                  domain.MustClock("09:45"),
		Title:                    "Scales",
		Difficulty:               domain.DifficultyEasy,
		EstimatedDurationMinutes: 45,
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	h := newHarness(t, func(d *Deps, _ *config.ServerConfig) {
		d.ProviderAvailable = func(context.Context) bool { return false }
	})

	rec := h.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["llm_available"])
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestID_Reused(t *testing.T) {
	h := newHarness(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestGenerate_OK(t *testing.T) {
	h := newHarness(t, nil)
	h.plans.res = &service.GeneratePlanResult{
		RunID:        "run-1",
		Plan:         domain.ReadyPlan([]domain.Task{task()}),
		WindowsCount: 1,
		Attempts:     1,
		Params:       generation.ResolveParams(generation.ParamsInput{}, generation.ParamsInput{}),
	}

	body := fmt.Sprintf(`{"user_profile":%s,"generation_request":{"type":"full_plan"},"params":{"temperature":0.2}}`, profileJSON)
	rec := h.do(t, http.MethodPost, "/api/generate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, "run-1", out["run_id"])
	assert.EqualValues(t, 1, out["windows_count"])
	assert.Len(t, out["plan"], 1)
	assert.Equal(t, []any{}, out["warnings"])
	assert.NotContains(t, out, "task")

	got := h.plans.lastReq
	require.Len(t, got.Goals, 1)
	assert.Equal(t, domain.RequestFullPlan, got.Request.Type)
	require.NotNil(t, got.Params.Temperature)
	assert.Equal(t, 0.2, *got.Params.Temperature)
	assert.Len(t, got.Availability.WeeklySchedule, 7, "schedule is normalized")
}

func TestGenerate_RegenerateVariantReturnsTask(t *testing.T) {
	h := newHarness(t, nil)
	h.plans.res = &service.GeneratePlanResult{RunID: "r", Plan: domain.ReadyPlan([]domain.Task{task()})}

	body := fmt.Sprintf(`{"user_profile":%s,"generation_request":{"type":"regenerate_task","target_date":"2026-02-02","goal_id":"g1"},"existing_plan":%s}`, profileJSON, existingPlanJSON)
	rec := h.do(t, http.MethodPost, "/api/generate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	require.Contains(t, out, "task")
	assert.Equal(t, "Scales", out["task"].(map[string]any)["title"])
	assert.Len(t, h.plans.lastReq.ExistingPlan, 1)
}

func TestGenerate_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{`, "invalid request body"},
		{"missing request", fmt.Sprintf(`{"user_profile":%s}`, profileJSON), "generation_request is required"},
		{"bad variant", fmt.Sprintf(`{"user_profile":%s,"generation_request":{"type":"weekly"}}`, profileJSON), "generation_request.type"},
		{"regenerate without date", fmt.Sprintf(`{"user_profile":%s,"generation_request":{"type":"regenerate_task"}}`, profileJSON), "target_date"},
		{"missing profile", `{"generation_request":{"type":"full_plan"}}`, "user_profile is required"},
		{"bad goal", `{"user_profile":{"goals":[{"title":"x","timeframe":{"start_date":"2026-02-01","end_date":"nope"}}],"availability":{}},"generation_request":{"type":"full_plan"}}`, "invalid user_profile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			rec := h.do(t, http.MethodPost, "/api/generate", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			out := decode(t, rec)
			assert.Contains(t, out["error"], tt.want)
			assert.Equal(t, "INVALID_REQUEST", out["code"])
		})
	}
}

func TestGenerate_ProfileErrorsListed(t *testing.T) {
	h := newHarness(t, nil)
	body := `{"user_profile":{"goals":[{"title":"x","timeframe":{"start_date":"2026-02-01","end_date":"nope"}}],"availability":{}},"generation_request":{"type":"full_plan"}}`
	rec := h.do(t, http.MethodPost, "/api/generate", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	details := decode(t, rec)["details"].([]any)
	assert.GreaterOrEqual(t, len(details), 2)
	assert.Contains(t, fmt.Sprint(details), "goals[0].id is required")
}

func TestGenerate_ErrorMapping(t *testing.T) {
	cve := &validation.ConstraintViolationError{Violations: []validation.Violation{{
		Field: "plan[0].date", Code: validation.CodeDateOutOfWindow, Severity: validation.SeverityError, Message: "no window",
	}}}

	tests := []struct {
		name      string
		err       error
		status    int
		code      string
		retryable bool
	}{
		{"empty goals", domain.ErrEmptyGoalSet, http.StatusUnprocessableEntity, "EMPTY_GOAL_SET", false},
		{"timeframe", fmt.Errorf("goal g1: %w", domain.ErrInvalidTimeframe), http.StatusUnprocessableEntity, "INVALID_TIMEFRAME", false},
		{"no slot", domain.ErrNoSlotForDate, http.StatusUnprocessableEntity, "NO_SLOT_FOR_DATE", false},
		{"violation", cve, http.StatusUnprocessableEntity, "CONSTRAINT_VIOLATION", false},
		{"timeout", fmt.Errorf("%w: slow", domain.ErrGenerationTimeout), http.StatusGatewayTimeout, "GENERATION_TIMEOUT", true},
		{"upstream", fmt.Errorf("%w: 500", domain.ErrGenerationService), http.StatusBadGateway, "GENERATION_SERVICE_ERROR", true},
		{"task count", fmt.Errorf("%w: %w, got 2", domain.ErrGenerationService, service.ErrTaskCount), http.StatusBadGateway, "GENERATION_SERVICE_ERROR", true},
		{"params", &generation.ParamsError{Errors: []error{fmt.Errorf("temperature: bad")}}, http.StatusBadRequest, "INVALID_PARAMS", false},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.plans.err = tt.err

			body := fmt.Sprintf(`{"user_profile":%s,"generation_request":{"type":"full_plan"}}`, profileJSON)
			rec := h.do(t, http.MethodPost, "/api/generate", body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			out := decode(t, rec)
			assert.Equal(t, tt.code, out["code"])
			assert.Equal(t, tt.retryable, out["retryable"])
			assert.NotEmpty(t, out["request_id"])
		})
	}
}

func TestGenerate_ViolationsInBody(t *testing.T) {
	h := newHarness(t, nil)
	h.plans.err = &validation.ConstraintViolationError{Violations: []validation.Violation{{
		Field: "plan[0].goal_id", Code: validation.CodeUnknownGoalReference, Severity: validation.SeverityError, Message: "g9",
	}}}

	body := fmt.Sprintf(`{"user_profile":%s,"generation_request":{"type":"full_plan"}}`, profileJSON)
	rec := h.do(t, http.MethodPost, "/api/generate", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	vs := decode(t, rec)["violations"].([]any)
	require.Len(t, vs, 1)
	assert.Equal(t, "UNKNOWN_GOAL_REFERENCE", vs[0].(map[string]any)["code"])
}

func TestGenerate_BodyTooLarge(t *testing.T) {
	h := newHarness(t, func(_ *Deps, cfg *config.ServerConfig) {
		cfg.MaxBodyBytes = 64
	})
	body := fmt.Sprintf(`{"user_profile":%s,"generation_request":{"type":"full_plan"}}`, profileJSON)
	rec := h.do(t, http.MethodPost, "/api/generate", body)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.Equal(t, "BODY_TOO_LARGE", decode(t, rec)["code"])
}

func TestRegenerateTask_ByIndex(t *testing.T) {
	h := newHarness(t, nil)
	replacement := task()
	replacement.Title = "Chords"
	h.regens.res = &service.RegenerateResult{
		RunID:    "run-2",
		Task:     replacement,
		Plan:     domain.ReadyPlan([]domain.Task{replacement}),
		Attempts: 1,
	}

	body := fmt.Sprintf(`{"task_index":0,"feedback":"harder","user_profile":%s,"existing_plan":%s}`, profileJSON, existingPlanJSON)
	rec := h.do(t, http.MethodPost, "/api/generate/regenerate-task", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, "Chords", out["task"].(map[string]any)["title"])
	assert.EqualValues(t, 0, out["task_index"])
	assert.Len(t, out["plan"], 1)

	assert.Equal(t, 0, h.regens.lastReq.Index)
	assert.Equal(t, "harder", h.regens.lastReq.Feedback)
	assert.Equal(t, []domain.Task{task()}, h.regens.lastReq.ExistingPlan)
}

func TestRegenerateTask_ByTaskValue(t *testing.T) {
	h := newHarness(t, nil)
	h.regens.res = &service.RegenerateResult{Task: task(), Plan: domain.ReadyPlan([]domain.Task{task()})}

	taskJSON := strings.Trim(strings.TrimSpace(existingPlanJSON), "[]")
	body := fmt.Sprintf(`{"task":%s,"feedback":"x","user_profile":%s,"existing_plan":%s}`, taskJSON, profileJSON, existingPlanJSON)
	rec := h.do(t, http.MethodPost, "/api/generate/regenerate-task", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, h.regens.lastReq.Index)
}

func TestRegenerateTask_TaskNotInPlan(t *testing.T) {
	h := newHarness(t, nil)
	body := fmt.Sprintf(`{"task":{"goal_id":"g1","date":"2026-02-09","start_time":"09:00","end_time":"10:00"},"feedback":"x","user_profile":%s,"existing_plan":%s}`, profileJSON, existingPlanJSON)
	rec := h.do(t, http.MethodPost, "/api/generate/regenerate-task", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], errTaskNotInPlan.Error())
}

func TestRegenerateTask_MissingSelector(t *testing.T) {
	h := newHarness(t, nil)
	body := fmt.Sprintf(`{"feedback":"x","user_profile":%s,"existing_plan":%s}`, profileJSON, existingPlanJSON)
	rec := h.do(t, http.MethodPost, "/api/generate/regenerate-task", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegenerateTask_ServiceErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrEmptyFeedback, http.StatusBadRequest, "EMPTY_FEEDBACK"},
		{fmt.Errorf("%w: 3 not in [0,1)", service.ErrTaskIndexOutOfRange), http.StatusBadRequest, "TASK_INDEX_OUT_OF_RANGE"},
		{domain.ErrUnknownGoalReference, http.StatusUnprocessableEntity, "UNKNOWN_GOAL_REFERENCE"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			h := newHarness(t, nil)
			h.regens.err = tt.err
			body := fmt.Sprintf(`{"task_index":0,"feedback":"x","user_profile":%s,"existing_plan":%s}`, profileJSON, existingPlanJSON)
			rec := h.do(t, http.MethodPost, "/api/generate/regenerate-task", body)
			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode(t, rec)["code"])
		})
	}
}

func TestPlayground(t *testing.T) {
	h := newHarness(t, nil)
	h.playground.res = &generation.PromptResult{
		Content:      `{"plan":[]}`,
		Model:        "llama3.2",
		FinishReason: "stop",
		LatencyMs:    12,
		UserMessage:  "hi",
	}

	rec := h.do(t, http.MethodPost, "/api/playground", `{"system_prompt":"sys","user_message":"hi","params":{"max_tokens":64}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	for _, key := range []string{"content", "usage", "model", "finish_reason", "latency_ms", "config", "system_prompt", "user_message"} {
		assert.Contains(t, out, key)
	}
	assert.Equal(t, "sys", h.playground.lastReq.SystemPrompt)
	require.NotNil(t, h.playground.lastReq.Params.MaxTokens)
	assert.Equal(t, 64, *h.playground.lastReq.Params.MaxTokens)
}

func TestPlayground_EmptyPrompt(t *testing.T) {
	h := newHarness(t, nil)
	h.playground.err = service.ErrEmptyPrompt
	rec := h.do(t, http.MethodPost, "/api/playground", `{"user_message":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMPTY_PROMPT", decode(t, rec)["code"])
}

func TestResolve(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodPost, "/api/resolve", fmt.Sprintf(`{"user_profile":%s}`, profileJSON))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.EqualValues(t, 1, out["windows_count"])
	entries := out["availability_context"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "2026-02-02", entries[0].(map[string]any)["date"])
}

func TestResolve_EmptyGoals(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodPost, "/api/resolve", `{"user_profile":{"goals":[],"availability":{}}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, "EMPTY_GOAL_SET", decode(t, rec)["code"])
}

func TestResolve_WindowTooLong(t *testing.T) {
	h := newHarness(t, nil)
	body := `{"user_profile":{"goals":[{"id":"g1","title":"Forever","timeframe":{"start_date":"0001-01-01","end_date":"9999-12-31"}}],` +
		`"availability":{"weekly_schedule":{"monday":[{"start":"09:00","end":"10:00"}]}}}}`
	rec := h.do(t, http.MethodPost, "/api/resolve", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, "INVALID_TIMEFRAME", decode(t, rec)["code"])
}

func TestCORS(t *testing.T) {
	h := newHarness(t, func(_ *Deps, cfg *config.ServerConfig) {
		cfg.AllowedOrigins = []string{"http://localhost:5173"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newHarness(t, func(d *Deps, _ *config.ServerConfig) {
		d.Metrics = metrics.New(reg)
		d.Gatherer = reg
	})

	h.do(t, http.MethodGet, "/health", "")
	rec := h.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `goalplan_http_requests_total{code="200",method="GET",route="/health"} 1`)
}

func TestRequestLogger_WritesLine(t *testing.T) {
	var buf bytes.Buffer
	h := newHarness(t, func(d *Deps, _ *config.ServerConfig) {
		d.Logger = slog.New(slog.NewJSONHandler(&buf, nil))
	})
	h.do(t, http.MethodGet, "/nope", "")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http_request", line["msg"])
	assert.Equal(t, "unmatched", line["route"])
	assert.EqualValues(t, http.StatusNotFound, line["status"])
}
