// Package commands implements contactctl, an operator tool that checks the
// delivery configuration and sends test submissions without the web page.
package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/DukeRupert/contactform/internal"
)

var (
	cfg    *internal.Config
	logger *slog.Logger

	verbose bool
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "contactctl",
		Short:        "Operate the contact form delivery pipeline",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := internal.NewConfig()
			if err != nil {
				return err
			}
			cfg = c

			out := io.Discard
			if verbose {
				out = cmd.ErrOrStderr()
			}
			logger = internal.NewLogger(out, "development", cfg.LogLevel)
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write logs to stderr")

	root.AddCommand(checkCmd(), sendCmd())
	return root
}
