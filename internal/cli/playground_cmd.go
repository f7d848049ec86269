package cli

import (
	"errors"
	"io"
	"os"

	"github.com/alexanderramin/goalplan/internal/cli/formatter"
	"github.com/alexanderramin/goalplan/internal/service"
	"github.com/spf13/cobra"
)

func newPlaygroundCmd(app *App) *cobra.Command {
	var (
		system     string
		systemFile string
		params     paramsFlags
	)

	cmd := &cobra.Command{
		Use:   "playground [message|-]",
		Short: "Run a free-form prompt with explicit generation params",
		Long: "Run a free-form prompt with explicit generation params.\n\n" +
			"The message is the first argument, or stdin when the argument is \"-\".\n" +
			"Without --system the default planning prompt is used.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := args[0]
			if message == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				message = string(data)
			}
			if systemFile != "" {
				if system != "" {
					return errors.New("--system and --system-file are mutually exclusive")
				}
				data, err := os.ReadFile(systemFile)
				if err != nil {
					return err
				}
				system = string(data)
			}

			svc, err := app.Services(cmd.Context())
			if err != nil {
				return err
			}

			stop := app.spin(cmd, "Running prompt...")
			res, err := svc.Playground.Run(cmd.Context(), service.PlaygroundRequest{
				SystemPrompt: system,
				UserMessage:  message,
				Params:       params.input(cmd),
			})
			stop()
			if err != nil {
				return err
			}

			return app.emit(cmd.OutOrStdout(), res, func() string {
				return formatter.FormatPlayground(res)
			})
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "System prompt")
	cmd.Flags().StringVar(&systemFile, "system-file", "", "Read the system prompt from a file")
	params.register(cmd.Flags())

	return cmd
}
