package api

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/alexanderramin/goalplan/internal/service"
	"github.com/alexanderramin/goalplan/internal/validation"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error      string                 `json:"error"`
	Code       string                 `json:"code"`
	Retryable  bool                   `json:"retryable"`
	RequestID  string                 `json:"request_id,omitempty"`
	Violations []validation.Violation `json:"violations,omitempty"`
	Details    []string               `json:"details,omitempty"`
}

// errorMapping pairs a sentinel with its status and wire code. Order matters:
// the first match wins.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{service.ErrEmptyFeedback, http.StatusBadRequest, "EMPTY_FEEDBACK"},
	{service.ErrTaskIndexOutOfRange, http.StatusBadRequest, "TASK_INDEX_OUT_OF_RANGE"},
	{service.ErrEmptyPrompt, http.StatusBadRequest, "EMPTY_PROMPT"},
	{domain.ErrInvalidTimeframe, http.StatusUnprocessableEntity, "INVALID_TIMEFRAME"},
	{domain.ErrEmptyGoalSet, http.StatusUnprocessableEntity, "EMPTY_GOAL_SET"},
	{domain.ErrNoSlotForDate, http.StatusUnprocessableEntity, "NO_SLOT_FOR_DATE"},
	{domain.ErrUnknownGoalReference, http.StatusUnprocessableEntity, "UNKNOWN_GOAL_REFERENCE"},
	{domain.ErrConstraintViolation, http.StatusUnprocessableEntity, "CONSTRAINT_VIOLATION"},
	{domain.ErrGenerationTimeout, http.StatusGatewayTimeout, "GENERATION_TIMEOUT"},
	{domain.ErrGenerationService, http.StatusBadGateway, "GENERATION_SERVICE_ERROR"},
}

func writeError(c *gin.Context, err error) {
	resp := errorResponse{
		Error:     err.Error(),
		Code:      "INTERNAL",
		Retryable: domain.IsRetryable(err),
		RequestID: c.GetString(requestIDKey),
	}
	status := http.StatusInternalServerError

	var (
		paramsErr *generation.ParamsError
		cve       *validation.ConstraintViolationError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		status, resp.Code = http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE"
	case errors.As(err, &paramsErr):
		status, resp.Code = http.StatusBadRequest, "INVALID_PARAMS"
		resp.Details = errorStrings(paramsErr.Errors)
	default:
		for _, m := range errorMapping {
			if errors.Is(err, m.target) {
				status, resp.Code = m.status, m.code
				break
			}
		}
	}
	if errors.As(err, &cve) {
		resp.Violations = cve.Violations
	}

	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, msg string, details []error) {
	var tooLarge *http.MaxBytesError
	for _, d := range details {
		if errors.As(d, &tooLarge) {
			writeError(c, d)
			return
		}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error:     msg,
		Code:      "INVALID_REQUEST",
		RequestID: c.GetString(requestIDKey),
		Details:   errorStrings(details),
	})
}

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}
