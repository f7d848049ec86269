package service

import (
	"context"
	"sync"

	"github.com/alexanderramin/goalplan/internal/contract"
	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/alexanderramin/goalplan/internal/testutil"
)

// fakeGenerator returns scripted responses in call order. The last response
// repeats once the script runs out.
type fakeGenerator struct {
	plans [][]domain.Task
	tasks []domain.Task
	err   error
	block bool

	planCalls   int
	taskCalls   int
	lastPlanReq contract.PlanGenerationRequest
	lastTaskReq contract.TaskRegenerationRequest
	lastParams  generation.Params
}

func (f *fakeGenerator) GeneratePlan(ctx context.Context, req contract.PlanGenerationRequest, params generation.Params) ([]domain.Task, error) {
	f.planCalls++
	f.lastPlanReq = req
	f.lastParams = params
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.plans[min(f.planCalls, len(f.plans))-1], nil
}

func (f *fakeGenerator) RegenerateTask(ctx context.Context, req contract.TaskRegenerationRequest, params generation.Params) (domain.Task, error) {
	f.taskCalls++
	f.lastTaskReq = req
	f.lastParams = params
	if f.block {
		<-ctx.Done()
		return domain.Task{}, ctx.Err()
	}
	if f.err != nil {
		return domain.Task{}, f.err
	}
	return f.tasks[min(f.taskCalls, len(f.tasks))-1], nil
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// profile is one goal over the first week of February 2026 with Monday
// 09:00-10:00 and Wednesday 18:00-19:00.
func profile() ([]domain.Goal, domain.Availability) {
	goal := testutil.NewTestGoal("Guitar",
		testutil.WithGoalID("g1"),
		testutil.WithTimeframe("2026-02-01", "2026-02-08"),
	)
	av := testutil.NewTestAvailability(
		testutil.WithSlots(domain.Monday, "09:00-10:00"),
		testutil.WithSlots(domain.Wednesday, "18:00-19:00"),
	)
	return []domain.Goal{goal}, av
}

func validPlan() []domain.Task {
	return []domain.Task{
		testutil.NewTestTask("g1", "2026-02-02", "09:00", "09:45", testutil.WithDifficulty(domain.DifficultyEasy)),
		testutil.NewTestTask("g1", "2026-02-04", "18:00", "19:00"),
	}
}
