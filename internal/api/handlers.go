package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/importer"
	"github.com/alexanderramin/goalplan/internal/scheduler"
	"github.com/alexanderramin/goalplan/internal/service"
	"github.com/gin-gonic/gin"
)

// decodeProfile converts the profile and plan, reporting every structural
// problem at once.
func decodeProfile(c *gin.Context, profile *userProfileBody, plan []importer.TaskImport) (*importer.Profile, bool) {
	if profile == nil {
		badRequest(c, "user_profile is required", nil)
		return nil, false
	}
	converted, err := importer.Convert(&importer.ProfileImport{
		Goals:        profile.Goals,
		Availability: profile.Availability,
		Plan:         plan,
	})
	if err != nil {
		badRequest(c, "invalid user_profile", unjoin(err))
		return nil, false
	}
	return converted, true
}

func unjoin(err error) []error {
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		return multi.Unwrap()
	}
	return []error{err}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, fmt.Sprintf("invalid request body: %v", err), []error{err})
		return false
	}
	return true
}

func (s *Server) generate(c *gin.Context) {
	var body generateBody
	if !bindJSON(c, &body) {
		return
	}
	if body.GenerationRequest == nil {
		badRequest(c, "generation_request is required", nil)
		return
	}
	if err := body.GenerationRequest.Validate(); err != nil {
		badRequest(c, err.Error(), nil)
		return
	}
	profile, ok := decodeProfile(c, body.UserProfile, body.ExistingPlan)
	if !ok {
		return
	}

	res, err := s.plans.Generate(c.Request.Context(), service.GeneratePlanRequest{
		Goals:        profile.Goals,
		Availability: profile.Availability,
		Request:      *body.GenerationRequest,
		ExistingPlan: profile.Plan,
		Params:       body.Params,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	resp := generateResponse{
		RunID:            res.RunID,
		Plan:             emptyIfNil(res.Plan.Tasks),
		WindowsCount:     res.WindowsCount,
		Attempts:         res.Attempts,
		Warnings:         emptyIfNil(res.Warnings),
		ScheduleWarnings: emptyIfNil(res.Schedule),
		Config:           res.Params,
	}
	if body.GenerationRequest.Type == domain.RequestRegenerateTask && len(res.Plan.Tasks) == 1 {
		resp.Task = &res.Plan.Tasks[0]
	}
	c.JSON(http.StatusOK, resp)
}

var errTaskNotInPlan = errors.New("task not found in existing_plan")

func (s *Server) regenerateTask(c *gin.Context) {
	var body regenerateBody
	if !bindJSON(c, &body) {
		return
	}
	if body.TaskIndex == nil && body.Task == nil {
		badRequest(c, "task_index or task is required", nil)
		return
	}
	profile, ok := decodeProfile(c, body.UserProfile, body.ExistingPlan)
	if !ok {
		return
	}

	index, err := locateTask(body, profile.Plan)
	if err != nil {
		badRequest(c, err.Error(), nil)
		return
	}

	res, err := s.regenerations.Regenerate(c.Request.Context(), service.RegenerateRequest{
		Index:        index,
		Feedback:     body.Feedback,
		Goals:        profile.Goals,
		Availability: profile.Availability,
		ExistingPlan: profile.Plan,
		Params:       body.Params,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, regenerateResponse{
		RunID:     res.RunID,
		TaskIndex: index,
		Task:      res.Task,
		Plan:      res.Plan.Tasks,
		Attempts:  res.Attempts,
		Warnings:  emptyIfNil(res.Warnings),
	})
}

// locateTask prefers an explicit index and falls back to the first task in
// plan equal to body.Task.
func locateTask(body regenerateBody, plan []domain.Task) (int, error) {
	if body.TaskIndex != nil {
		return *body.TaskIndex, nil
	}
	if errs := importer.ValidateTasks([]importer.TaskImport{*body.Task}); len(errs) > 0 {
		return 0, fmt.Errorf("invalid task: %w", errors.Join(errs...))
	}
	want := importer.ConvertTasks([]importer.TaskImport{*body.Task})[0]
	for i, t := range plan {
		if t == want {
			return i, nil
		}
	}
	return 0, errTaskNotInPlan
}

func (s *Server) playgroundRun(c *gin.Context) {
	var body playgroundBody
	if !bindJSON(c, &body) {
		return
	}

	res, err := s.playground.Run(c.Request.Context(), service.PlaygroundRequest{
		SystemPrompt: body.SystemPrompt,
		UserMessage:  body.UserMessage,
		Params:       body.Params,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// resolve exposes the resolver on its own, which is handy when debugging a
// profile that yields no windows.
func (s *Server) resolve(c *gin.Context) {
	var body struct {
		UserProfile *userProfileBody `json:"user_profile"`
	}
	if !bindJSON(c, &body) {
		return
	}
	profile, ok := decodeProfile(c, body.UserProfile, nil)
	if !ok {
		return
	}

	windows, err := scheduler.Resolve(profile.Goals, profile.Availability)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"availability_context": windows,
		"windows_count":        len(windows),
		"schedule_warnings":    emptyIfNil(scheduler.AvailabilityWarnings(profile.Goals, profile.Availability)),
	})
}

func (s *Server) health(c *gin.Context) {
	resp := healthResponse{Status: "ok"}
	if s.providerAvailable != nil {
		ok := s.providerAvailable(c.Request.Context())
		resp.LLMAvailable = &ok
	}
	c.JSON(http.StatusOK, resp)
}
