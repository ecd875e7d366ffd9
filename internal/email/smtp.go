package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds SMTP connection parameters.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string // optional, some servers allow unauthenticated relay
	Password string
	From     string // default sender address
	FromName string // optional sender display name
}

// SMTPSender implements Sender over SMTP using go-mail.
// TLS mode is chosen from the port.
type SMTPSender struct {
	config SMTPConfig
	logger *slog.Logger
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(config SMTPConfig, logger *slog.Logger) *SMTPSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{
		config: config,
		logger: logger.With("component", "smtp"),
	}
}

// Send builds the MIME message and delivers it in one connection.
func (s *SMTPSender) Send(ctx context.Context, email *Email) error {
	msg, err := s.message(email)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug("email sent", "to", email.To, "subject", email.Subject)
	return nil
}

func (s *SMTPSender) message(email *Email) (*mail.Msg, error) {
	msg := mail.NewMsg()

	from := email.From
	switch {
	case from != "":
		if err := msg.From(from); err != nil {
			return nil, fmt.Errorf("invalid from address: %w", err)
		}
	case s.config.FromName != "":
		if err := msg.FromFormat(s.config.FromName, s.config.From); err != nil {
			return nil, fmt.Errorf("invalid from address: %w", err)
		}
	default:
		if err := msg.From(s.config.From); err != nil {
			return nil, fmt.Errorf("invalid from address: %w", err)
		}
	}

	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(email.Subject)

	// Prefer HTML with a text fallback
	if email.HTMLBody != "" {
		msg.SetBodyString(mail.TypeTextPlain, email.TextBody)
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTMLBody)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, email.TextBody)
	}

	return msg, nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTimeout(30 * time.Second),
	}

	switch s.config.Port {
	case 465:
		// Implicit TLS (SMTPS)
		opts = append(opts, mail.WithSSL())
	case 587:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		// 25, or a local catcher such as Mailpit on 1025
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if s.config.Username != "" && s.config.Password != "" {
		opts = append(opts,
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		)
	}

	return opts
}
