package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProfileImport is the on-disk or over-the-wire form of a caller profile.
// Every field is kept as raw text so validation can report all problems at
// once, with field paths, before anything is converted.
type ProfileImport struct {
	Goals        []GoalImport       `json:"goals" yaml:"goals"`
	Availability AvailabilityImport `json:"availability" yaml:"availability"`
	// Plan is an optional existing plan, used by regenerate and validate.
	Plan []TaskImport `json:"plan,omitempty" yaml:"plan,omitempty"`
}

type GoalImport struct {
	ID            string          `json:"id" yaml:"id"`
	Title         string          `json:"title" yaml:"title"`
	Description   string          `json:"description,omitempty" yaml:"description,omitempty"`
	SkillLevel    string          `json:"skill_level" yaml:"skill_level"`
	TargetOutcome string          `json:"target_outcome,omitempty" yaml:"target_outcome,omitempty"`
	Timeframe     TimeframeImport `json:"timeframe" yaml:"timeframe"`
}

type TimeframeImport struct {
	StartDate string `json:"start_date" yaml:"start_date"`
	EndDate   string `json:"end_date" yaml:"end_date"`
}

type AvailabilityImport struct {
	Timezone       string                  `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	WeeklySchedule map[string][]SlotImport `json:"weekly_schedule" yaml:"weekly_schedule"`
	BlockedDates   []string                `json:"blocked_dates,omitempty" yaml:"blocked_dates,omitempty"`
}

type SlotImport struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

type TaskImport struct {
	GoalID                   string `json:"goal_id" yaml:"goal_id"`
	Date                     string `json:"date" yaml:"date"`
	StartTime                string `json:"start_time" yaml:"start_time"`
	EndTime                  string `json:"end_time" yaml:"end_time"`
	Title                    string `json:"title" yaml:"title"`
	Description              string `json:"description,omitempty" yaml:"description,omitempty"`
	Difficulty               string `json:"difficulty" yaml:"difficulty"`
	EstimatedDurationMinutes int    `json:"estimated_duration_minutes" yaml:"estimated_duration_minutes"`
}

// LoadProfile reads a profile file. .yaml and .yml files are parsed as YAML,
// everything else as JSON.
func LoadProfile(path string) (*ProfileImport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProfile(data, filepath.Ext(path))
}

// ParseProfile decodes data according to ext (".json", ".yaml" or ".yml").
func ParseProfile(data []byte, ext string) (*ProfileImport, error) {
	var p ProfileImport
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parsing profile file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parsing profile file: %w", err)
		}
	}
	return &p, nil
}

// LoadPlan reads a file holding a plan, either {"plan": [...]} or a bare
// task list.
func LoadPlan(path string) ([]TaskImport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Plan []TaskImport `json:"plan" yaml:"plan"`
	}
	var bare []TaskImport
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &wrapped); err == nil && wrapped.Plan != nil {
			return wrapped.Plan, nil
		}
		if err := yaml.Unmarshal(data, &bare); err != nil {
			return nil, fmt.Errorf("parsing plan file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Plan != nil {
			return wrapped.Plan, nil
		}
		if err := json.Unmarshal(data, &bare); err != nil {
			return nil, fmt.Errorf("parsing plan file: %w", err)
		}
	}
	return bare, nil
}
