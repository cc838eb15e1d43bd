package internal

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"development"`
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"debug"`

	// Public URL of the form page, used as the Origin for browser-style APIs
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Serve page templates from disk with hot reload (development only)
	TemplatesDir string `env:"TEMPLATES_DIR"`

	// Delivery provider: "emailjs", "postmark" or "smtp"
	DeliveryProvider string `env:"DELIVERY_PROVIDER" envDefault:"emailjs"`

	// Zero means outbound sends run until the provider answers
	DeliveryTimeout time.Duration `env:"DELIVERY_TIMEOUT" envDefault:"0s"`

	// Submission behaviour
	SendPolicy     string        `env:"CONTACT_SEND_POLICY" envDefault:"sequential"`
	SuccessDisplay time.Duration `env:"CONTACT_SUCCESS_DISPLAY" envDefault:"4s"`
	FormIdleTTL    time.Duration `env:"CONTACT_FORM_IDLE_TTL" envDefault:"30m"`

	// EmailJS REST API
	EmailJSAPIURL      string `env:"EMAILJS_API_URL" envDefault:"https://api.emailjs.com/api/v1.0/email/send"`
	EmailJSAccessToken string `env:"EMAILJS_ACCESS_TOKEN"`

	// Postmark
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	// SMTP Configuration (Mailhog defaults for development)
	SMTPHost      string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"1025"`
	SMTPUsername  string `env:"SMTP_USERNAME"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
	SMTPFrom      string `env:"SMTP_FROM" envDefault:"noreply@example.com"`
	SMTPFromName  string `env:"SMTP_FROM_NAME" envDefault:"Contact Form"`
	SMTPAdminTo   string `env:"SMTP_ADMIN_TO" envDefault:"owner@example.com"`
	DKIMSelector  string `env:"SMTP_DKIM_SELECTOR"`
	DKIMDomain    string `env:"SMTP_DKIM_DOMAIN"`
	DKIMKeyPath   string `env:"SMTP_DKIM_KEY_PATH"`
	DKIMKeyInline string `env:"SMTP_DKIM_PRIVATE_KEY"`

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected
	MetricsUsername string `env:"METRICS_USERNAME"`
	MetricsPassword string `env:"METRICS_PASSWORD"`
}

// NewConfig loads the process configuration. The four delivery identifiers
// are deliberately not part of it: they are checked per submission by
// contact.LoadDeliveryConfig so a misconfigured deployment still serves the
// form page.
func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	switch cfg.DeliveryProvider {
	case "emailjs", "postmark", "smtp":
	default:
		return nil, fmt.Errorf("DELIVERY_PROVIDER must be one of 'emailjs', 'postmark' or 'smtp', got: %s", cfg.DeliveryProvider)
	}

	switch cfg.SendPolicy {
	case "sequential", "independent":
	default:
		return nil, fmt.Errorf("CONTACT_SEND_POLICY must be either 'sequential' or 'independent', got: %s", cfg.SendPolicy)
	}

	if cfg.SuccessDisplay <= 0 {
		return nil, fmt.Errorf("CONTACT_SUCCESS_DISPLAY must be positive, got: %s", cfg.SuccessDisplay)
	}
	if cfg.DeliveryProvider == "postmark" && cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("POSTMARK_SERVER_TOKEN is required when DELIVERY_PROVIDER is 'postmark'")
	}
	if cfg.DeliveryTimeout < 0 {
		return nil, fmt.Errorf("DELIVERY_TIMEOUT must not be negative, got: %s", cfg.DeliveryTimeout)
	}

	return cfg, nil
}
