package domain

import "fmt"

type Timeframe struct {
	StartDate Date `json:"start_date" yaml:"start_date"`
	EndDate   Date `json:"end_date" yaml:"end_date"`
}

// Contains reports whether d falls inside the inclusive timeframe.
func (tf Timeframe) Contains(d Date) bool {
	return !d.Before(tf.StartDate) && !d.After(tf.EndDate)
}

type Goal struct {
	ID            string     `json:"id" yaml:"id"`
	Title         string     `json:"title" yaml:"title"`
	Description   string     `json:"description" yaml:"description"`
	SkillLevel    SkillLevel `json:"skill_level" yaml:"skill_level"`
	TargetOutcome string     `json:"target_outcome" yaml:"target_outcome"`
	Timeframe     Timeframe  `json:"timeframe" yaml:"timeframe"`
}

// ValidateTimeframe checks StartDate <= EndDate.
func (g *Goal) ValidateTimeframe() error {
	if g.Timeframe.StartDate.After(g.Timeframe.EndDate) {
		return fmt.Errorf("%w: goal %q starts %s after it ends %s",
			ErrInvalidTimeframe, g.ID, g.Timeframe.StartDate, g.Timeframe.EndDate)
	}
	return nil
}

// GoalIndex maps goal ids to goals for reference checks.
type GoalIndex map[string]*Goal

// IndexGoals builds a GoalIndex. Later duplicates win; ids are expected to be
// unique per request.
func IndexGoals(goals []Goal) GoalIndex {
	idx := make(GoalIndex, len(goals))
	for i := range goals {
		idx[goals[i].ID] = &goals[i]
	}
	return idx
}
