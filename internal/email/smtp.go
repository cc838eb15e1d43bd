package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"
)

// =============================================================================
// SMTP Sender Implementation
// =============================================================================

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string // SMTP server hostname (e.g., "localhost" for Mailhog)
	Port     int    // SMTP server port (e.g., 1025 for Mailhog)
	Username string // SMTP authentication username (empty for Mailhog)
	Password string // SMTP authentication password (empty for Mailhog)
	Addresses
}

// sendMailFunc matches smtp.SendMail.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends emails via SMTP.
//
// This implementation works with:
// - Mailhog (development): No authentication required
// - Any standard SMTP server with PLAIN auth
//
// Bodies come from the built-in templates; the template id is written to an
// X-Template-ID header. Messages are DKIM signed when a signer is supplied.
type SMTPSender struct {
	config   SMTPConfig
	signer   *DKIMSigner
	logger   *slog.Logger
	sendMail sendMailFunc
}

// NewSMTPSender creates a new SMTP-based sender. signer may be nil.
func NewSMTPSender(config SMTPConfig, signer *DKIMSigner, logger *slog.Logger) *SMTPSender {
	config.Addresses = config.Addresses.withDefaults()

	return &SMTPSender{
		config:   config,
		signer:   signer,
		logger:   logger,
		sendMail: smtp.SendMail,
	}
}

// Send implements Sender. net/smtp has no context support, so ctx is only
// checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r, err := compose(ctx, s.config.Addresses, msg)
	if err != nil {
		return err
	}

	raw, err := s.signer.Sign(s.buildMessage(r), s.config.From)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	// Create auth if credentials are provided (not needed for Mailhog)
	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := s.sendMail(addr, auth, s.config.From, []string{r.To}, raw); err != nil {
		return &ProviderError{Provider: "smtp", Text: err.Error()}
	}

	s.logger.Debug("smtp accepted message",
		"kind", msg.Kind,
		"subject", r.Subject,
	)
	return nil
}

// buildMessage constructs the raw email message with headers.
func (s *SMTPSender) buildMessage(r rendered) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", headerValue(r.To)))
	if r.ReplyTo != "" {
		buf.WriteString(fmt.Sprintf("Reply-To: %s\r\n", headerValue(r.ReplyTo)))
	}
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", headerValue(r.Subject)))
	buf.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	if r.Tag != "" {
		buf.WriteString(fmt.Sprintf("X-Template-ID: %s\r\n", headerValue(r.Tag)))
	}
	buf.WriteString("MIME-Version: 1.0\r\n")

	boundary := "===============CONTACTFORM_BOUNDARY==============="
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	buf.WriteString("\r\n")

	// Plain text part
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(crlf(r.TextBody))
	buf.WriteString("\r\n")

	// HTML part
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(crlf(r.HTMLBody))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return buf.Bytes()
}

// headerValue drops line breaks so visitor input cannot add headers.
func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

func crlf(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}

var _ Sender = (*SMTPSender)(nil)
