package validation

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/goalplan/internal/domain"
)

// Code identifies why a candidate task was rejected.
type Code string

const (
	CodeUnknownGoalReference Code = "UNKNOWN_GOAL_REFERENCE"
	CodeDateOutOfWindow      Code = "DATE_OUT_OF_WINDOW"
	CodeSlotViolation        Code = "SLOT_VIOLATION"
	CodeInvertedInterval     Code = "INVERTED_INTERVAL"
	CodeInvalidDifficulty    Code = "INVALID_DIFFICULTY"
	CodeDurationMismatch     Code = "DURATION_MISMATCH"
	CodeDateRelocated        Code = "DATE_RELOCATED"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation is one per-task finding. Field is a path such as
// "plan[3].start_time".
type Violation struct {
	TaskIndex int      `json:"task_index"`
	Field     string   `json:"field"`
	Code      Code     `json:"code"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s: %s", v.Field, v.Code, v.Message)
}

// ConstraintViolationError carries every violation found in a rejected
// candidate. It matches domain.ErrConstraintViolation with errors.Is.
type ConstraintViolationError struct {
	Violations []Violation
}

func (e *ConstraintViolationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Severity == SeverityError {
			parts = append(parts, v.String())
		}
	}
	return fmt.Sprintf("%s: %s", domain.ErrConstraintViolation, strings.Join(parts, "; "))
}

func (e *ConstraintViolationError) Unwrap() error {
	return domain.ErrConstraintViolation
}

// Errors returns only the error-severity violations.
func (e *ConstraintViolationError) Errors() []Violation {
	return filter(e.Violations, SeverityError)
}

// Codes returns the distinct codes in first-seen order.
func (e *ConstraintViolationError) Codes() []Code {
	seen := map[Code]bool{}
	var out []Code
	for _, v := range e.Violations {
		if !seen[v.Code] {
			seen[v.Code] = true
			out = append(out, v.Code)
		}
	}
	return out
}

func filter(vs []Violation, sev Severity) []Violation {
	var out []Violation
	for _, v := range vs {
		if v.Severity == sev {
			out = append(out, v)
		}
	}
	return out
}
