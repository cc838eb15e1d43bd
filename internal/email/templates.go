package email

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// rendered is a fully composed email ready for a provider that does not host
// its own templates.
type rendered struct {
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
	Tag      string
}

// compose renders msg with the built-in templates. The template id travels
// along as the provider tag so deliveries can still be told apart.
func compose(ctx context.Context, addrs Addresses, msg Message) (rendered, error) {
	to, replyTo, err := addrs.recipients(msg)
	if err != nil {
		return rendered{}, err
	}

	var (
		subject   string
		component templ.Component
		text      string
	)
	switch msg.Kind {
	case KindAdmin:
		subject = fmt.Sprintf("New message from %s", msg.Params[ParamName])
		component = AdminNotification(msg.Params)
		text = adminNotificationText(msg.Params)
	case KindAutoReply:
		subject = "Thanks for getting in touch"
		component = AutoReply(msg.Params)
		text = autoReplyText(msg.Params)
	}

	html, err := Render(ctx, component)
	if err != nil {
		return rendered{}, fmt.Errorf("render %s template: %w", msg.Kind, err)
	}

	return rendered{
		To:       to,
		ReplyTo:  replyTo,
		Subject:  subject,
		HTMLBody: html,
		TextBody: text,
		Tag:      msg.TemplateID,
	}, nil
}

// Render takes a templ.Component and renders it to a string.
func Render(ctx context.Context, tpl templ.Component) (string, error) {
	var sb strings.Builder
	if err := tpl.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// AdminNotification is the HTML body of the owner alert.
func AdminNotification(p Params) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html><body style="font-family:sans-serif">`)
		b.WriteString(`<h2>New contact form message</h2>`)
		b.WriteString(`<p><strong>Name:</strong> `)
		b.WriteString(templ.EscapeString(p[ParamName]))
		b.WriteString(`</p><p><strong>Email:</strong> `)
		b.WriteString(templ.EscapeString(p[ParamEmail]))
		b.WriteString(`</p><p><strong>Message:</strong></p>`)
		b.WriteString(`<p style="white-space:pre-wrap">`)
		b.WriteString(templ.EscapeString(p[ParamMessage]))
		b.WriteString(`</p></body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// AutoReply is the HTML body of the visitor acknowledgement.
func AutoReply(p Params) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html><body style="font-family:sans-serif">`)
		b.WriteString(`<p>Hi `)
		b.WriteString(templ.EscapeString(p[ParamName]))
		b.WriteString(`,</p>`)
		b.WriteString(`<p>Thanks for your message. I'll get back to you as soon as I can.</p>`)
		b.WriteString(`<blockquote style="white-space:pre-wrap;color:#555">`)
		b.WriteString(templ.EscapeString(p[ParamMessage]))
		b.WriteString(`</blockquote>`)
		fmt.Fprintf(&b, `<p style="color:#999">&copy; %d</p>`, time.Now().Year())
		b.WriteString(`</body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func adminNotificationText(p Params) string {
	return fmt.Sprintf(`New contact form message

Name: %s
Email: %s

%s
`, p[ParamName], p[ParamEmail], p[ParamMessage])
}

func autoReplyText(p Params) string {
	return fmt.Sprintf(`Hi %s,

Thanks for your message. I'll get back to you as soon as I can.

> %s
`, p[ParamName], strings.ReplaceAll(p[ParamMessage], "\n", "\n> "))
}
