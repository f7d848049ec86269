package cli

import (
	"strings"

	"github.com/alexanderramin/goalplan/internal/cli/formatter"
	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/scheduler"
	"github.com/spf13/cobra"
)

type resolveOutput struct {
	AvailabilityContext []domain.AvailableDateEntry `json:"availability_context"`
	WindowsCount        int                         `json:"windows_count"`
	ScheduleWarnings    []scheduler.ScheduleWarning `json:"schedule_warnings"`
}

func newResolveCmd(app *App) *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the dated availability windows for a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}

			windows, err := scheduler.Resolve(profile.Goals, profile.Availability)
			if err != nil {
				return err
			}
			out := resolveOutput{
				AvailabilityContext: windows,
				WindowsCount:        len(windows),
				ScheduleWarnings:    scheduler.AvailabilityWarnings(profile.Goals, profile.Availability),
			}
			if out.ScheduleWarnings == nil {
				out.ScheduleWarnings = []scheduler.ScheduleWarning{}
			}

			return app.emit(cmd.OutOrStdout(), out, func() string {
				var b strings.Builder
				b.WriteString(formatter.Header("Availability") + "\n")
				b.WriteString(formatter.FormatWindows(windows))
				b.WriteString(formatter.FormatScheduleWarnings(out.ScheduleWarnings))
				return b.String()
			})
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile file (.yaml or .json)")

	return cmd
}
