package email

import (
	"context"
	"log/slog"
)

// Email is a message to be sent.
type Email struct {
	To       []string
	From     string // optional, the sender's default is used when empty
	Subject  string
	TextBody string
	HTMLBody string // optional
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// LogSender writes messages to the log instead of delivering them.
// Used in development when no SMTP host is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, email *Email) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("email not sent (no SMTP host configured)",
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}
