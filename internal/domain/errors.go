package domain

import "errors"

var (
	// ErrInvalidTimeframe indicates a goal whose start date is after its end date.
	ErrInvalidTimeframe = errors.New("invalid goal timeframe")

	// ErrEmptyGoalSet indicates resolution was asked to run without goals.
	ErrEmptyGoalSet = errors.New("goal set is empty")

	// ErrNoSlotForDate indicates the requested date has no resolved window.
	ErrNoSlotForDate = errors.New("no available slot for date")

	// ErrUnknownGoalReference indicates a goal id that is not in the goal set.
	ErrUnknownGoalReference = errors.New("unknown goal reference")

	// ErrConstraintViolation indicates generated output that breaks the
	// resolved availability or goal references.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrGenerationService indicates a transient failure of the generation
	// service. Callers may retry; a retry re-runs resolution.
	ErrGenerationService = errors.New("generation service error")

	// ErrGenerationTimeout indicates the generation call exceeded its deadline.
	ErrGenerationTimeout = errors.New("generation service timed out")
)

// IsRetryable reports whether err came from the generation boundary.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrGenerationService) || errors.Is(err, ErrGenerationTimeout)
}
