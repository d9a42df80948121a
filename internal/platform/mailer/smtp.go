package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/rgoodall/taskly-api/internal/config"
	"github.com/rgoodall/taskly-api/internal/platform/logger"
)

// SMTPMailer implements Mailer over a plain SMTP relay.
type SMTPMailer struct {
	addr   string
	from   string
	auth   smtp.Auth
	logger *slog.Logger

	// sendFunc is injectable for testing; defaults to smtp.SendMail.
	sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// Ensure SMTPMailer implements Mailer interface
var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer from the mail configuration.
// If logger is nil, a default logger will be used.
func NewSMTPMailer(cfg config.MailConfig, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}

	return &SMTPMailer{
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:     cfg.From,
		auth:     auth,
		logger:   logger.With(slog.String("component", "mailer")),
		sendFunc: smtp.SendMail,
	}
}

// Send implements Mailer.Send.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(m.from, to, subject, body)

	if err := m.sendFunc(m.addr, m.auth, m.from, []string{to}, msg); err != nil {
		log.Error("failed to send email",
			slog.String("error", err.Error()),
			slog.String("subject", subject))
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("email sent", slog.String("subject", subject))
	return nil
}

// buildMessage assembles an RFC 5322 plain-text message.
func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
