package transport

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
)

// SMTPConfig holds the relay settings for an SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

// SMTPSender relays raw messages through an SMTP server using STARTTLS
// where the relay offers it.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send relays the raw message. The context only gates the dial; net/smtp
// has no per-command cancellation.
func (s *SMTPSender) Send(ctx context.Context, from string, to []string, raw []byte) error {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(addr, auth, from, to, raw); err != nil {
		return fmt.Errorf("SMTP relay failed: %w", err)
	}
	return nil
}

// Name returns the transport name.
func (s *SMTPSender) Name() string {
	return "smtp"
}
