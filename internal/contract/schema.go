package contract

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/goalplan/internal/domain"
)

// SchemaVersion names an external output shape of the generation service.
// Every version decodes into the same canonical []domain.Task.
type SchemaVersion string

const (
	// SchemaFlatV1 is {"plan":[task...]} and {"task":task}.
	SchemaFlatV1 SchemaVersion = "flat_v1"
	// SchemaNestedV2 is {"days":[{"date","time_blocks":[{"start_time","end_time","tasks":[...]}]}]}.
	SchemaNestedV2 SchemaVersion = "nested_v2"
)

// ErrEmptyTask is returned when a single-task response carries no task.
var ErrEmptyTask = errors.New("response contains no task")

// PlanSchema adapts one external schema version to canonical tasks.
type PlanSchema interface {
	Version() SchemaVersion
	DecodePlan(data []byte) ([]domain.Task, error)
	DecodeTask(data []byte) (domain.Task, error)
	// PlanJSONSchema and TaskJSONSchema describe the expected output for
	// providers that support structured output.
	PlanJSONSchema() map[string]any
	TaskJSONSchema() map[string]any
}

// SchemaFor returns the adapter for v. An empty version means flat_v1.
func SchemaFor(v SchemaVersion) (PlanSchema, error) {
	switch v {
	case SchemaFlatV1, "":
		return flatV1{}, nil
	case SchemaNestedV2:
		return nestedV2{}, nil
	default:
		return nil, fmt.Errorf("unknown schema version %q", v)
	}
}

// ValidSchemaVersions lists the supported versions.
var ValidSchemaVersions = []SchemaVersion{SchemaFlatV1, SchemaNestedV2}

type flatV1 struct{}

func (flatV1) Version() SchemaVersion { return SchemaFlatV1 }

func (flatV1) DecodePlan(data []byte) ([]domain.Task, error) {
	var resp PlanGenerationResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode %s plan: %w", SchemaFlatV1, err)
	}
	// An empty array decodes to a non-nil slice; nil means absent or null.
	if resp.Plan == nil {
		return nil, fmt.Errorf("decode %s plan: missing \"plan\" field", SchemaFlatV1)
	}
	return resp.Plan, nil
}

func (flatV1) DecodeTask(data []byte) (domain.Task, error) {
	var resp struct {
		TaskRegenerationResponse
		PlanGenerationResponse
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return domain.Task{}, fmt.Errorf("decode %s task: %w", SchemaFlatV1, err)
	}
	switch {
	case resp.Task != (domain.Task{}):
		return resp.Task, nil
	case len(resp.Plan) == 1:
		// Some models answer a single-task request with a one-element plan.
		return resp.Plan[0], nil
	default:
		return domain.Task{}, fmt.Errorf("decode %s task: %w", SchemaFlatV1, ErrEmptyTask)
	}
}

func (flatV1) PlanJSONSchema() map[string]any {
	return objectSchema(map[string]any{
		"plan": map[string]any{"type": "array", "items": taskSchema()},
	}, "plan")
}

func (flatV1) TaskJSONSchema() map[string]any {
	return objectSchema(map[string]any{"task": taskSchema()}, "task")
}

type nestedTask struct {
	GoalID                   string            `json:"goal_id"`
	Title                    string            `json:"title"`
	Description              string            `json:"description"`
	Difficulty               domain.Difficulty `json:"difficulty"`
	EstimatedDurationMinutes int               `json:"estimated_duration_minutes"`
}

type nestedBlock struct {
	StartTime domain.ClockTime `json:"start_time"`
	EndTime   domain.ClockTime `json:"end_time"`
	Tasks     []nestedTask     `json:"tasks"`
}

type nestedDay struct {
	Date       domain.Date   `json:"date"`
	TimeBlocks []nestedBlock `json:"time_blocks"`
}

type nestedV2 struct{}

func (nestedV2) Version() SchemaVersion { return SchemaNestedV2 }

// DecodePlan flattens days and blocks in document order. Every task in a
// block inherits the block's date and interval.
func (nestedV2) DecodePlan(data []byte) ([]domain.Task, error) {
	var resp struct {
		Days *[]nestedDay `json:"days"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode %s plan: %w", SchemaNestedV2, err)
	}
	if resp.Days == nil {
		return nil, fmt.Errorf("decode %s plan: missing \"days\" field", SchemaNestedV2)
	}
	return flattenDays(*resp.Days), nil
}

func (n nestedV2) DecodeTask(data []byte) (domain.Task, error) {
	tasks, err := n.DecodePlan(data)
	if err != nil {
		return domain.Task{}, err
	}
	if len(tasks) != 1 {
		return domain.Task{}, fmt.Errorf("decode %s task: expected exactly one task, got %d", SchemaNestedV2, len(tasks))
	}
	return tasks[0], nil
}

func (nestedV2) PlanJSONSchema() map[string]any {
	nested := taskSchema()
	props := nested["properties"].(map[string]any)
	for _, k := range []string{"date", "start_time", "end_time"} {
		delete(props, k)
	}
	nested["required"] = []string{"goal_id", "title", "description", "difficulty", "estimated_duration_minutes"}

	block := objectSchema(map[string]any{
		"start_time": map[string]any{"type": "string"},
		"end_time":   map[string]any{"type": "string"},
		"tasks":      map[string]any{"type": "array", "items": nested},
	}, "start_time", "end_time", "tasks")
	day := objectSchema(map[string]any{
		"date":        map[string]any{"type": "string"},
		"time_blocks": map[string]any{"type": "array", "items": block},
	}, "date", "time_blocks")
	return objectSchema(map[string]any{
		"days": map[string]any{"type": "array", "items": day},
	}, "days")
}

func (n nestedV2) TaskJSONSchema() map[string]any {
	return n.PlanJSONSchema()
}

func flattenDays(days []nestedDay) []domain.Task {
	out := make([]domain.Task, 0)
	for _, day := range days {
		for _, block := range day.TimeBlocks {
			for _, t := range block.Tasks {
				out = append(out, domain.Task{
					GoalID:                   t.GoalID,
					Date:                     day.Date,
					StartTime:                block.StartTime,
					EndTime:                  block.EndTime,
					Title:                    t.Title,
					Description:              t.Description,
					Difficulty:               t.Difficulty,
					EstimatedDurationMinutes: t.EstimatedDurationMinutes,
				})
			}
		}
	}
	return out
}

func taskSchema() map[string]any {
	difficulties := make([]string, 0, len(domain.ValidDifficulties))
	for _, d := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyModerate, domain.DifficultyChallenging} {
		difficulties = append(difficulties, string(d))
	}
	return objectSchema(map[string]any{
		"goal_id":                    map[string]any{"type": "string"},
		"date":                       map[string]any{"type": "string"},
		"start_time":                 map[string]any{"type": "string"},
		"end_time":                   map[string]any{"type": "string"},
		"title":                      map[string]any{"type": "string"},
		"description":                map[string]any{"type": "string"},
		"difficulty":                 map[string]any{"type": "string", "enum": difficulties},
		"estimated_duration_minutes": map[string]any{"type": "integer"},
	}, "goal_id", "date", "start_time", "end_time", "title", "description", "difficulty", "estimated_duration_minutes")
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}
