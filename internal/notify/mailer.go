package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/iliyamo/movie-booking/internal/config"
)

// Mailer delivers notifications over SMTP.
type Mailer struct {
	from     string
	fromName string
	renderer *Renderer
	deliver  func(ctx context.Context, msgs ...*mail.Msg) error
}

// NewMailer builds an SMTP mailer from cfg. Credentials are optional so a
// local relay without auth works too.
func NewMailer(cfg config.MailConfig, renderer *Renderer) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail host is not configured")
	}
	if cfg.From == "" {
		return nil, errors.New("mail sender address is not configured")
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{
		from:     cfg.From,
		fromName: cfg.FromName,
		renderer: renderer,
		deliver:  client.DialAndSendWithContext,
	}, nil
}

// Send renders m and mails it.
func (s *Mailer) Send(ctx context.Context, m Message) error {
	out, err := s.renderer.Render(m)
	if err != nil {
		return err
	}
	msg, err := s.compose(m.To, out)
	if err != nil {
		return err
	}
	if err := s.deliver(ctx, msg); err != nil {
		return fmt.Errorf("send %s to %s: %w", m.Kind, m.To, err)
	}
	return nil
}

func (s *Mailer) compose(to string, out Rendered) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return nil, fmt.Errorf("sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	msg.Subject(out.Subject)
	msg.SetBodyString(mail.TypeTextPlain, out.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, out.HTML)
	return msg, nil
}
