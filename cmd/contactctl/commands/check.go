package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DukeRupert/contactform/internal"
	"github.com/DukeRupert/contactform/internal/contact"
	"github.com/DukeRupert/contactform/internal/domain"
)

// check: validate the delivery configuration the server would load.
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the delivery configuration is complete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if _, err := internal.NewSender(cfg, logger); err != nil {
				return fmt.Errorf("provider %s: %w", cfg.DeliveryProvider, err)
			}
			fmt.Fprintf(out, "provider: %s\npolicy:   %s\n", cfg.DeliveryProvider, cfg.SendPolicy)

			if _, err := contact.LoadDeliveryConfigFromEnv(logger); err != nil {
				return fmt.Errorf("submissions disabled: %s", domain.ErrorDetail(err))
			}
			fmt.Fprintln(out, "delivery configuration complete")
			return nil
		},
	}
}
