package domain

import "fmt"

// Plan is an ordered task list plus its lifecycle state. Tasks are only ever
// replaced wholesale; no transition exposes a half-applied plan.
type Plan struct {
	State PlanState `json:"state"`
	Tasks []Task    `json:"plan"`
}

// NewDraftPlan returns an empty plan in the draft state.
func NewDraftPlan() Plan {
	return Plan{State: PlanDraft, Tasks: []Task{}}
}

// ReadyPlan wraps an accepted task list.
func ReadyPlan(tasks []Task) Plan {
	return Plan{State: PlanReady, Tasks: cloneTasks(tasks)}
}

var planTransitions = map[PlanState][]PlanState{
	PlanDraft:            {PlanGenerating},
	PlanGenerating:       {PlanReady, PlanDraft},
	PlanReady:            {PlanGenerating, PlanRegeneratingTask},
	PlanRegeneratingTask: {PlanReady},
}

// CanTransition reports whether from -> to is a legal plan transition.
func CanTransition(from, to PlanState) bool {
	for _, next := range planTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of p in state to.
func (p Plan) Transition(to PlanState) (Plan, error) {
	if !CanTransition(p.State, to) {
		return p, fmt.Errorf("plan cannot move from %s to %s", p.State, to)
	}
	return Plan{State: to, Tasks: p.Tasks}, nil
}

// ReplaceTask returns a new ready plan with the task at index i swapped for
// replacement. Length and every other element are unchanged; p is not
// modified.
func (p Plan) ReplaceTask(i int, replacement Task) (Plan, error) {
	if i < 0 || i >= len(p.Tasks) {
		return p, fmt.Errorf("task index %d out of range [0,%d)", i, len(p.Tasks))
	}
	tasks := cloneTasks(p.Tasks)
	tasks[i] = replacement
	return Plan{State: PlanReady, Tasks: tasks}, nil
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
