package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrz1836/postmark"
)

// PostmarkConfig holds Postmark credentials and sender identity.
type PostmarkConfig struct {
	ServerToken  string
	AccountToken string
	Addresses    Addresses
}

// postmarkAPI is the slice of *postmark.Client the sender uses.
type postmarkAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// PostmarkSender renders both notifications locally and hands them to
// Postmark. The template id is forwarded as the Postmark tag.
type PostmarkSender struct {
	client postmarkAPI
	addrs  Addresses
	logger *slog.Logger
}

// NewPostmarkSender creates a Postmark-backed sender.
func NewPostmarkSender(cfg PostmarkConfig, logger *slog.Logger) (*PostmarkSender, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("postmark server token is required")
	}
	return newPostmarkSender(postmark.NewClient(cfg.ServerToken, cfg.AccountToken), cfg.Addresses, logger), nil
}

func newPostmarkSender(client postmarkAPI, addrs Addresses, logger *slog.Logger) *PostmarkSender {
	return &PostmarkSender{
		client: client,
		addrs:  addrs.withDefaults(),
		logger: logger,
	}
}

// Send implements Sender.
func (s *PostmarkSender) Send(ctx context.Context, msg Message) error {
	r, err := compose(ctx, s.addrs, msg)
	if err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     fmt.Sprintf("%s <%s>", s.addrs.FromName, s.addrs.From),
		To:       r.To,
		ReplyTo:  r.ReplyTo,
		Subject:  r.Subject,
		Tag:      r.Tag,
		HTMLBody: r.HTMLBody,
		TextBody: r.TextBody,
	})
	if err != nil {
		return fmt.Errorf("postmark send: %w", err)
	}
	if resp.ErrorCode > 0 {
		return &ProviderError{
			Provider: "postmark",
			Status:   int(resp.ErrorCode),
			Text:     resp.Message,
		}
	}

	s.logger.Debug("postmark accepted message",
		"kind", msg.Kind,
		"message_id", resp.MessageID,
	)
	return nil
}

var _ Sender = (*PostmarkSender)(nil)
