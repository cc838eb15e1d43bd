package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DukeRupert/contactform/internal"
	"github.com/DukeRupert/contactform/internal/contact"
	"github.com/DukeRupert/contactform/internal/domain"
)

// send: run one submission through the orchestrator, as the form would.
func sendCmd() *cobra.Command {
	var (
		name    string
		addr    string
		message string
		policy  string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a test submission (admin notification and auto-reply)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if policy == "" {
				policy = cfg.SendPolicy
			}
			p, err := contact.ParsePolicy(policy)
			if err != nil {
				return err
			}

			sender, err := internal.NewSender(cfg, logger)
			if err != nil {
				return err
			}

			deliveryCfg, err := contact.LoadDeliveryConfigFromEnv(logger)
			if err != nil {
				return fmt.Errorf("%s: %s", domain.ErrorMessage(err), domain.ErrorDetail(err))
			}

			o := contact.NewOrchestrator(contact.OrchestratorConfig{
				Sender:  sender,
				Policy:  p,
				Timeout: cfg.DeliveryTimeout,
				Logger:  logger,
			})

			err = o.Submit(cmd.Context(), contact.NewFormPayload(name, addr, message), deliveryCfg)
			o.Wait()
			if domain.IsDelivery(err) {
				// The operator sees the provider detail the visitor never does
				return fmt.Errorf("%s (%s)", domain.ErrorMessage(err), domain.ErrorDetail(err))
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "sent")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "visitor name")
	cmd.Flags().StringVar(&addr, "email", "", "visitor email (receives the auto-reply)")
	cmd.Flags().StringVar(&message, "message", "", "message body")
	cmd.Flags().StringVar(&policy, "policy", "", "send policy: sequential or independent (default from CONTACT_SEND_POLICY)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}
