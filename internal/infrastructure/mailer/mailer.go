// Package mailer delivers the one-time codes behind the magic-link and
// confirmation flows. The SMTP implementation is used in deployments; the log
// mailer stands in during development so codes are visible without a mail
// server.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/dayslot/core/internal/infrastructure/config"
	"github.com/dayslot/core/internal/infrastructure/logger"
	"github.com/dayslot/core/internal/ports"
)

// New selects the implementation from configuration.
func New(cfg config.SMTPConfig, logger *logger.Logger) ports.Mailer {
	if cfg.Enabled {
		return &SMTPMailer{cfg: cfg}
	}
	return &LogMailer{logger: logger}
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}

// LogMailer writes the message to the application log instead of sending it.
type LogMailer struct {
	logger *logger.Logger
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Infow("Outbound mail (log mailer)",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
