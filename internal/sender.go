package internal

import (
	"fmt"
	"log/slog"

	"github.com/DukeRupert/contactform/internal/email"
)

// NewSender builds the delivery provider selected by DELIVERY_PROVIDER.
func NewSender(cfg *Config, logger *slog.Logger) (email.Sender, error) {
	addrs := email.Addresses{
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		AdminTo:  cfg.SMTPAdminTo,
	}

	switch cfg.DeliveryProvider {
	case "emailjs":
		return email.NewEmailJSSender(email.EmailJSConfig{
			APIURL:      cfg.EmailJSAPIURL,
			AccessToken: cfg.EmailJSAccessToken,
			Origin:      cfg.BaseURL,
			Timeout:     cfg.DeliveryTimeout,
		}, logger), nil

	case "postmark":
		return email.NewPostmarkSender(email.PostmarkConfig{
			ServerToken:  cfg.PostmarkServerToken,
			AccountToken: cfg.PostmarkAccountToken,
			Addresses:    addrs,
		}, logger)

	case "smtp":
		signer, err := email.NewDKIMSigner(email.DKIMConfig{
			Selector: cfg.DKIMSelector,
			Domain:   cfg.DKIMDomain,
			KeyPath:  cfg.DKIMKeyPath,
			KeyPEM:   cfg.DKIMKeyInline,
		})
		if err != nil {
			return nil, fmt.Errorf("dkim signer: %w", err)
		}
		return email.NewSMTPSender(email.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			Addresses: addrs,
		}, signer, logger), nil

	default:
		return nil, fmt.Errorf("unknown delivery provider %q", cfg.DeliveryProvider)
	}
}
