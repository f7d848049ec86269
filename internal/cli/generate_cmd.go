package cli

import (
	"fmt"

	"github.com/alexanderramin/goalplan/internal/cli/formatter"
	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/service"
	"github.com/spf13/cobra"
)

type generateOutput struct {
	*service.GeneratePlanResult
	Plan []domain.Task `json:"plan"`
}

func newGenerateCmd(app *App) *cobra.Command {
	var (
		profilePath string
		planPath    string
		reqType     string
		date        string
		goalID      string
		params      paramsFlags
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a plan that fits the profile's availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := generationRequest(reqType, date, goalID)
			if err != nil {
				return err
			}
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			existing, err := loadPlan(planPath, profile)
			if err != nil {
				return err
			}
			svc, err := app.Services(cmd.Context())
			if err != nil {
				return err
			}

			stop := app.spin(cmd, "Generating plan...")
			res, err := svc.Plans.Generate(cmd.Context(), service.GeneratePlanRequest{
				Goals:        profile.Goals,
				Availability: profile.Availability,
				Request:      req,
				ExistingPlan: existing,
				Params:       params.input(cmd),
			})
			stop()
			if err != nil {
				return err
			}

			return app.emit(cmd.OutOrStdout(), generateOutput{res, res.Plan.Tasks}, func() string {
				return formatter.FormatGeneration(res)
			})
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile file (.yaml or .json)")
	cmd.Flags().StringVar(&planPath, "plan", "", "Existing plan passed as context")
	cmd.Flags().StringVar(&reqType, "type", string(domain.RequestFullPlan), "Request type (full_plan|regenerate_task)")
	cmd.Flags().StringVar(&date, "date", "", "Target date for regenerate_task (YYYY-MM-DD)")
	cmd.Flags().StringVar(&goalID, "goal", "", "Goal scope for regenerate_task")
	params.register(cmd.Flags())

	return cmd
}

func generationRequest(reqType, date, goalID string) (domain.GenerationRequest, error) {
	req := domain.GenerationRequest{Type: domain.GenerationRequestType(reqType)}
	if date != "" {
		d, err := domain.ParseDate(date)
		if err != nil {
			return req, fmt.Errorf("--date: %w", err)
		}
		req.TargetDate = &d
	}
	if goalID != "" {
		req.GoalID = &goalID
	}
	return req, req.Validate()
}
