package contact

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/DukeRupert/contactform/internal/domain"
)

// Environment keys read by the configuration guard.
const (
	EnvServiceID           = "CONTACT_SERVICE_ID"
	EnvAdminTemplateID     = "CONTACT_TEMPLATE_ID_ADMIN"
	EnvAutoReplyTemplateID = "CONTACT_TEMPLATE_ID_AUTOREPLY"
	EnvPublicKey           = "CONTACT_PUBLIC_KEY"
)

// DeliveryConfig holds the four provider identifiers. It is immutable once
// built; a nil *DeliveryConfig means delivery is not configured.
type DeliveryConfig struct {
	serviceID           string
	adminTemplateID     string
	autoReplyTemplateID string
	publicKey           string
}

// NewDeliveryConfig validates and builds a DeliveryConfig. Every missing
// identifier is named in the returned error.
func NewDeliveryConfig(serviceID, adminTemplateID, autoReplyTemplateID, publicKey string) (*DeliveryConfig, error) {
	cfg := &DeliveryConfig{
		serviceID:           strings.TrimSpace(serviceID),
		adminTemplateID:     strings.TrimSpace(adminTemplateID),
		autoReplyTemplateID: strings.TrimSpace(autoReplyTemplateID),
		publicKey:           strings.TrimSpace(publicKey),
	}

	var missing []string
	if cfg.serviceID == "" {
		missing = append(missing, EnvServiceID)
	}
	if cfg.adminTemplateID == "" {
		missing = append(missing, EnvAdminTemplateID)
	}
	if cfg.autoReplyTemplateID == "" {
		missing = append(missing, EnvAutoReplyTemplateID)
	}
	if cfg.publicKey == "" {
		missing = append(missing, EnvPublicKey)
	}

	if len(missing) > 0 {
		return nil, domain.Config("contact.load_config",
			fmt.Sprintf("missing delivery configuration: %s", strings.Join(missing, ", ")))
	}
	return cfg, nil
}

// LoadDeliveryConfig reads the four identifiers through lookup and logs a
// diagnostic when any is absent.
func LoadDeliveryConfig(lookup func(string) (string, bool), logger *slog.Logger) (*DeliveryConfig, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	cfg, err := NewDeliveryConfig(
		get(EnvServiceID),
		get(EnvAdminTemplateID),
		get(EnvAutoReplyTemplateID),
		get(EnvPublicKey),
	)
	if err != nil {
		logger.Error("contact form delivery is not configured",
			"error", domain.ErrorDetail(err),
		)
		return nil, err
	}
	return cfg, nil
}

// LoadDeliveryConfigFromEnv is LoadDeliveryConfig over the process environment.
func LoadDeliveryConfigFromEnv(logger *slog.Logger) (*DeliveryConfig, error) {
	return LoadDeliveryConfig(os.LookupEnv, logger)
}

func (c *DeliveryConfig) ServiceID() string           { return c.serviceID }
func (c *DeliveryConfig) AdminTemplateID() string     { return c.adminTemplateID }
func (c *DeliveryConfig) AutoReplyTemplateID() string { return c.autoReplyTemplateID }
func (c *DeliveryConfig) PublicKey() string           { return c.publicKey }
