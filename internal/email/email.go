// Package email delivers the two contact-form notifications through a
// transactional email provider.
//
// Three providers implement Sender:
// - EmailJSSender: the EmailJS REST API, templates live at the provider
// - PostmarkSender: Postmark's API, bodies rendered locally
// - SMTPSender: plain SMTP (Mailhog in development), optional DKIM signing
package email

import (
	"context"
	"fmt"
	"maps"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Sender delivers a single templated message.
//
// A returned error means the provider did not accept the message. Provider
// rejections are reported as *ProviderError so callers can log the raw text.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// =============================================================================
// Message Types
// =============================================================================

// Kind tells providers which of the two notifications a message is.
type Kind string

const (
	KindAdmin     Kind = "admin"     // Alert to the form owner
	KindAutoReply Kind = "autoreply" // Acknowledgement to the visitor
)

// Template parameter names, shared with the provider-side templates.
const (
	ParamName    = "from_name"
	ParamEmail   = "from_email"
	ParamMessage = "message"
)

// Params is the form field snapshot handed to a template.
type Params map[string]string

// Clone returns an independent copy so one send cannot alter another's input.
func (p Params) Clone() Params {
	return maps.Clone(p)
}

// Message is one outbound call: which service, which template, which fields.
type Message struct {
	Kind       Kind
	ServiceID  string
	TemplateID string
	PublicKey  string
	Params     Params
}

// =============================================================================
// Errors
// =============================================================================

// ProviderError is a rejection reported by the delivery provider.
type ProviderError struct {
	Provider string // "emailjs", "postmark" or "smtp"
	Status   int    // HTTP status or provider error code, 0 if none
	Text     string // Human-readable provider message
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Text)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Text)
}

// =============================================================================
// Addressing (for providers that render locally)
// =============================================================================

// Addresses holds the sender identity and admin inbox for local rendering.
type Addresses struct {
	From     string // Sender address
	FromName string // Sender display name
	AdminTo  string // Inbox receiving admin notifications
}

const (
	DefaultFromEmail = "noreply@example.com"
	DefaultFromName  = "Contact Form"
)

func (a Addresses) withDefaults() Addresses {
	if a.From == "" {
		a.From = DefaultFromEmail
	}
	if a.FromName == "" {
		a.FromName = DefaultFromName
	}
	return a
}

// recipients resolves To and Reply-To for a message kind.
func (a Addresses) recipients(msg Message) (to, replyTo string, err error) {
	switch msg.Kind {
	case KindAdmin:
		if a.AdminTo == "" {
			return "", "", fmt.Errorf("admin recipient is not configured")
		}
		return a.AdminTo, msg.Params[ParamEmail], nil
	case KindAutoReply:
		visitor := msg.Params[ParamEmail]
		if visitor == "" {
			return "", "", fmt.Errorf("visitor email is missing from template params")
		}
		return visitor, a.AdminTo, nil
	default:
		return "", "", fmt.Errorf("unknown message kind %q", msg.Kind)
	}
}
