package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/alexanderramin/goalplan/internal/testutil"
	"github.com/alexanderramin/goalplan/internal/validation"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullPlanRequest() GeneratePlanRequest {
	goals, av := profile()
	return GeneratePlanRequest{
		Goals:        goals,
		Availability: av,
		Request:      domain.FullPlanRequest(),
	}
}

func TestPlanService_Generate_AcceptsValidPlan(t *testing.T) {
	gen := &fakeGenerator{plans: [][]domain.Task{validPlan()}}
	svc := NewPlanService(gen, nil, DefaultConfig())

	res, err := svc.Generate(context.Background(), fullPlanRequest())
	require.NoError(t, err)

	if diff := cmp.Diff(validPlan(), res.Plan.Tasks); diff != "" {
		t.Errorf("accepted plan mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, domain.PlanReady, res.Plan.State)
	assert.Equal(t, 2, res.WindowsCount)
	assert.Equal(t, 1, res.Attempts)
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Warnings)
}

func TestPlanService_Generate_ForwardsOnlyResolvedWindows(t *testing.T) {
	gen := &fakeGenerator{plans: [][]domain.Task{validPlan()}}
	req := fullPlanRequest()
	req.Availability.BlockedDates = domain.NewDateSet(domain.MustDate("2026-02-04"))
	req.ExistingPlan = nil

	svc := NewPlanService(gen, nil, DefaultConfig())
	_, err := svc.Generate(context.Background(), req)

	// The candidate still schedules the blocked Wednesday, so it is rejected.
	var cve *validation.ConstraintViolationError
	require.ErrorAs(t, err, &cve)
	assert.Equal(t, []validation.Code{validation.CodeDateOutOfWindow}, cve.Codes())

	require.Len(t, gen.lastPlanReq.AvailabilityContext, 1)
	assert.Equal(t, domain.MustDate("2026-02-02"), gen.lastPlanReq.AvailabilityContext[0].Date)
	assert.NotNil(t, gen.lastPlanReq.ExistingPlan)
	assert.Equal(t, "UTC", gen.lastPlanReq.Timezone)
}

func TestPlanService_Generate_ViolationHardFailsByDefault(t *testing.T) {
	bad := validPlan()
	bad[0].EndTime = domain.MustClock("10:30")
	gen := &fakeGenerator{plans: [][]domain.Task{bad, validPlan()}}

	svc := NewPlanService(gen, nil, DefaultConfig())
	res, err := svc.Generate(context.Background(), fullPlanRequest())

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	assert.Equal(t, 1, gen.planCalls)
}

func TestPlanService_Generate_RetryOnViolation(t *testing.T) {
	bad := validPlan()
	bad[1].GoalID = "ghost"
	gen := &fakeGenerator{plans: [][]domain.Task{bad, validPlan()}}

	cfg := DefaultConfig()
	cfg.RetryOnViolation = true
	res, err := NewPlanService(gen, nil, cfg).Generate(context.Background(), fullPlanRequest())

	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 2, gen.planCalls)
}

func TestPlanService_Generate_RetryOnViolationOnlyOnce(t *testing.T) {
	bad := validPlan()
	bad[1].GoalID = "ghost"
	gen := &fakeGenerator{plans: [][]domain.Task{bad}}

	cfg := DefaultConfig()
	cfg.RetryOnViolation = true
	_, err := NewPlanService(gen, nil, cfg).Generate(context.Background(), fullPlanRequest())

	var cve *validation.ConstraintViolationError
	require.ErrorAs(t, err, &cve)
	assert.Equal(t, 1, cve.Violations[0].TaskIndex)
	assert.Equal(t, 2, gen.planCalls)
}

func TestPlanService_Generate_GenerationErrorsAreNotRetried(t *testing.T) {
	gen := &fakeGenerator{err: domain.ErrGenerationService}

	cfg := DefaultConfig()
	cfg.RetryOnViolation = true
	_, err := NewPlanService(gen, nil, cfg).Generate(context.Background(), fullPlanRequest())

	assert.ErrorIs(t, err, domain.ErrGenerationService)
	assert.True(t, domain.IsRetryable(err))
	assert.Equal(t, 1, gen.planCalls)
}

func TestPlanService_Generate_Timeout(t *testing.T) {
	gen := &fakeGenerator{block: true}

	cfg := DefaultConfig()
	cfg.PlanTimeout = 20 * time.Millisecond
	_, err := NewPlanService(gen, nil, cfg).Generate(context.Background(), fullPlanRequest())

	assert.ErrorIs(t, err, domain.ErrGenerationTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPlanService_Generate_ResolutionErrorsSkipGenerator(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GeneratePlanRequest)
		want   error
	}{
		{
			name:   "empty goal set",
			mutate: func(r *GeneratePlanRequest) { r.Goals = nil },
			want:   domain.ErrEmptyGoalSet,
		},
		{
			name: "inverted timeframe",
			mutate: func(r *GeneratePlanRequest) {
				r.Goals = []domain.Goal{testutil.NewTestGoal("x", testutil.WithTimeframe("2026-03-01", "2026-02-01"))}
			},
			want: domain.ErrInvalidTimeframe,
		},
		{
			name: "regenerate_task for an unavailable date",
			mutate: func(r *GeneratePlanRequest) {
				r.Request = domain.RegenerateTaskRequest(domain.MustDate("2026-02-03"), "g1")
			},
			want: domain.ErrNoSlotForDate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{plans: [][]domain.Task{validPlan()}}
			req := fullPlanRequest()
			tt.mutate(&req)

			_, err := NewPlanService(gen, nil, DefaultConfig()).Generate(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, gen.planCalls)
		})
	}
}

func TestPlanService_Generate_RegenerateTaskVariantIsScoped(t *testing.T) {
	gen := &fakeGenerator{plans: [][]domain.Task{{validPlan()[1]}}}
	req := fullPlanRequest()
	req.Request = domain.RegenerateTaskRequest(domain.MustDate("2026-02-04"), "g1")

	res, err := NewPlanService(gen, nil, DefaultConfig()).Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Plan.Tasks, 1)
	require.Len(t, gen.lastPlanReq.AvailabilityContext, 1)
	assert.Equal(t, domain.Wednesday, gen.lastPlanReq.AvailabilityContext[0].Weekday)
}

func TestPlanService_Generate_RegenerateTaskVariantNeedsExactlyOneTask(t *testing.T) {
	onDate := validPlan()[1]
	second := onDate
	second.StartTime = domain.MustClock("18:30")
	second.EndTime = domain.MustClock("19:00")
	second.EstimatedDurationMinutes = 30

	for name, candidate := range map[string][]domain.Task{
		"none": {},
		"two":  {onDate, second},
	} {
		t.Run(name, func(t *testing.T) {
			gen := &fakeGenerator{plans: [][]domain.Task{candidate}}
			req := fullPlanRequest()
			req.Request = domain.RegenerateTaskRequest(domain.MustDate("2026-02-04"), "g1")

			res, err := NewPlanService(gen, nil, DefaultConfig()).Generate(context.Background(), req)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrTaskCount)
			assert.ErrorIs(t, err, domain.ErrGenerationService)
			assert.True(t, domain.IsRetryable(err))
		})
	}
}

func TestPlanService_Generate_InvalidParams(t *testing.T) {
	gen := &fakeGenerator{plans: [][]domain.Task{validPlan()}}
	req := fullPlanRequest()
	hot := 3.5
	req.Params.Temperature = &hot

	_, err := NewPlanService(gen, nil, DefaultConfig()).Generate(context.Background(), req)
	assert.ErrorContains(t, err, "temperature")
	assert.Zero(t, gen.planCalls)
}

func TestPlanService_Generate_ParamsCascade(t *testing.T) {
	gen := &fakeGenerator{plans: [][]domain.Task{validPlan()}}
	cfg := DefaultConfig()
	cfg.Defaults = generation.ParamsInput{Model: "gpt-4o", Schema: "nested_v2"}
	req := fullPlanRequest()
	req.Params.Model = "gpt-4o-mini"

	res, err := NewPlanService(gen, nil, cfg).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", gen.lastParams.Model)
	assert.EqualValues(t, "nested_v2", gen.lastParams.Schema)
	assert.Equal(t, gen.lastParams, res.Params)
}

func TestPlanService_Generate_SoftDurationWarning(t *testing.T) {
	plan := validPlan()
	plan[1].EstimatedDurationMinutes = 20
	gen := &fakeGenerator{plans: [][]domain.Task{plan}}

	res, err := NewPlanService(gen, nil, DefaultConfig()).Generate(context.Background(), fullPlanRequest())
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, validation.CodeDurationMismatch, res.Warnings[0].Code)

	strict := validation.New(validation.WithDurationPolicy(validation.DurationHard))
	_, err = NewPlanService(gen, strict, DefaultConfig()).Generate(context.Background(), fullPlanRequest())
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestPlanService_Generate_ObservesUseCase(t *testing.T) {
	obs := &recordingObserver{}
	gen := &fakeGenerator{err: errors.New("boom")}

	_, err := NewPlanService(gen, nil, DefaultConfig(), nil, obs).Generate(context.Background(), fullPlanRequest())
	require.Error(t, err)

	require.Len(t, obs.events, 1)
	ev := obs.events[0]
	assert.Equal(t, "generate-plan", ev.Name)
	assert.False(t, ev.Success)
	assert.NotEmpty(t, ev.RunID)
	assert.Equal(t, "full_plan", ev.Fields["request_type"])
	assert.Equal(t, 1, ev.Fields["attempts"])
}
