package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/goalplan/internal/cli/formatter"
	"github.com/alexanderramin/goalplan/internal/scheduler"
	"github.com/alexanderramin/goalplan/internal/validation"
	"github.com/spf13/cobra"
)

type validateOutput struct {
	Valid      bool                   `json:"valid"`
	Tasks      int                    `json:"tasks"`
	Violations []validation.Violation `json:"violations"`
}

func newValidateCmd(app *App) *cobra.Command {
	var profilePath, planPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a plan against a profile's availability and goals",
		Long: "Check a plan against a profile's availability and goals.\n\n" +
			"The plan comes from --plan, or from the profile's own plan section.\n" +
			"Exits non-zero when any error-level violation is found.",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			tasks, err := loadPlan(planPath, profile)
			if err != nil {
				return err
			}
			validator, err := app.Config.Validator()
			if err != nil {
				return err
			}
			windows, err := scheduler.Resolve(profile.Goals, profile.Availability)
			if err != nil {
				return err
			}

			out := validateOutput{Valid: true, Tasks: len(tasks), Violations: []validation.Violation{}}
			res, verr := validator.ValidatePlan(tasks, profile.Goals, windows)
			var cve *validation.ConstraintViolationError
			switch {
			case verr == nil:
				out.Violations = append(out.Violations, res.Warnings...)
			case errors.As(verr, &cve):
				out.Valid = false
				out.Violations = cve.Violations
			default:
				return verr
			}

			if err := app.emit(cmd.OutOrStdout(), out, func() string {
				var b strings.Builder
				b.WriteString(formatter.Header("Plan Validation") + "\n")
				fmt.Fprintf(&b, "  Tasks:    %d\n  Windows:  %d\n\n", len(tasks), len(windows))
				b.WriteString(formatter.FormatViolations(out.Violations))
				return b.String()
			}); err != nil {
				return err
			}
			if !out.Valid {
				return fmt.Errorf("plan rejected: %w", verr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile file (.yaml or .json)")
	cmd.Flags().StringVar(&planPath, "plan", "", "Plan file (JSON {\"plan\": [...]} or a bare list)")

	return cmd
}
