package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// EmailJSAPIURL is the EmailJS send endpoint
	EmailJSAPIURL = "https://api.emailjs.com/api/v1.0/email/send"

	// maxErrorBody caps how much of a rejection body is kept for logs
	maxErrorBody = 4 << 10
)

// EmailJSConfig contains configuration for the EmailJS sender.
type EmailJSConfig struct {
	APIURL      string        // Defaults to EmailJSAPIURL
	AccessToken string        // Private key, required when strict mode is enabled on the account
	Origin      string        // Sent as the Origin header; EmailJS checks it against allowed domains
	Timeout     time.Duration // Zero disables the client timeout
}

// EmailJSSender sends template emails through the EmailJS REST API.
//
// The service id, template id and public key come with each Message; the
// templates themselves (recipients, subject, body) are edited in the
// EmailJS dashboard.
type EmailJSSender struct {
	config EmailJSConfig
	client *http.Client
	logger *slog.Logger
}

// NewEmailJSSender creates a new EmailJS sender.
func NewEmailJSSender(config EmailJSConfig, logger *slog.Logger) *EmailJSSender {
	if config.APIURL == "" {
		config.APIURL = EmailJSAPIURL
	}

	return &EmailJSSender{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

type emailJSRequest struct {
	ServiceID      string `json:"service_id"`
	TemplateID     string `json:"template_id"`
	UserID         string `json:"user_id"`
	AccessToken    string `json:"accessToken,omitempty"`
	TemplateParams Params `json:"template_params"`
}

// Send posts one message to EmailJS. Any non-200 answer becomes a
// *ProviderError carrying the response text.
func (s *EmailJSSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(emailJSRequest{
		ServiceID:      msg.ServiceID,
		TemplateID:     msg.TemplateID,
		UserID:         msg.PublicKey,
		AccessToken:    s.config.AccessToken,
		TemplateParams: msg.Params,
	})
	if err != nil {
		return fmt.Errorf("marshal emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.Origin != "" {
		req.Header.Set("Origin", s.config.Origin)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs request: %w", err)
	}
	defer resp.Body.Close()

	text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode != http.StatusOK {
		perr := &ProviderError{
			Provider: "emailjs",
			Status:   resp.StatusCode,
			Text:     strings.TrimSpace(string(text)),
		}
		if perr.Text == "" {
			perr.Text = http.StatusText(resp.StatusCode)
		}
		return perr
	}

	s.logger.Debug("emailjs accepted message",
		"kind", msg.Kind,
		"template", msg.TemplateID,
	)
	return nil
}

var _ Sender = (*EmailJSSender)(nil)
