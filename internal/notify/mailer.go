// Package notify sends customer email.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/MikeMC777/bookstore/internal/config"
)

type Message struct {
	To      []string
	From    string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// NewMailer picks the backend named by EMAIL_BACKEND.
func NewMailer(cfg config.Email) (Mailer, error) {
	switch cfg.Backend {
	case "", "console":
		return ConsoleMailer{}, nil
	case "smtp":
		return NewSMTPMailer(cfg)
	default:
		return nil, fmt.Errorf("unknown email backend %q", cfg.Backend)
	}
}

// ConsoleMailer writes messages to the log instead of delivering them.
type ConsoleMailer struct{}

func (ConsoleMailer) Send(ctx context.Context, m Message) error {
	zerolog.Ctx(ctx).Info().
		Strs("to", m.To).
		Str("from", m.From).
		Str("subject", m.Subject).
		Str("body", m.Text).
		Msg("email (console backend)")
	return nil
}

type SMTPMailer struct {
	client *mail.Client
}

func NewSMTPMailer(cfg config.Email) (*SMTPMailer, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if cfg.HostUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.HostUser),
			mail.WithPassword(cfg.HostPassword),
		)
	}
	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: c}, nil
}

// Send delivers m as multipart/alternative: plain text first, HTML as the
// alternative part.
func (s *SMTPMailer) Send(ctx context.Context, m Message) error {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return fmt.Errorf("from %q: %w", m.From, err)
	}
	if err := msg.To(m.To...); err != nil {
		return fmt.Errorf("to %v: %w", m.To, err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Text)
	if m.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, m.HTML)
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
