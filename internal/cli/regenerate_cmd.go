package cli

import (
	"github.com/alexanderramin/goalplan/internal/cli/formatter"
	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/service"
	"github.com/spf13/cobra"
)

type regenerateOutput struct {
	*service.RegenerateResult
	TaskIndex int           `json:"task_index"`
	Plan      []domain.Task `json:"plan"`
}

func newRegenerateCmd(app *App) *cobra.Command {
	var (
		profilePath string
		planPath    string
		index       int
		feedback    string
		params      paramsFlags
	)

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Replace one task of a plan using feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			plan, err := loadPlan(planPath, profile)
			if err != nil {
				return err
			}
			svc, err := app.Services(cmd.Context())
			if err != nil {
				return err
			}

			stop := app.spin(cmd, "Regenerating task...")
			res, err := svc.Regenerations.Regenerate(cmd.Context(), service.RegenerateRequest{
				Index:        index,
				Feedback:     feedback,
				Goals:        profile.Goals,
				Availability: profile.Availability,
				ExistingPlan: plan,
				Params:       params.input(cmd),
			})
			stop()
			if err != nil {
				return err
			}

			return app.emit(cmd.OutOrStdout(), regenerateOutput{res, index, res.Plan.Tasks}, func() string {
				return formatter.FormatRegeneration(index, res)
			})
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile file (.yaml or .json)")
	cmd.Flags().StringVar(&planPath, "plan", "", "Plan file; defaults to the profile's plan section")
	cmd.Flags().IntVarP(&index, "index", "i", 0, "Index of the task to replace")
	cmd.Flags().StringVarP(&feedback, "feedback", "f", "", "What should change about the task")
	_ = cmd.MarkFlagRequired("index")
	_ = cmd.MarkFlagRequired("feedback")
	params.register(cmd.Flags())

	return cmd
}
