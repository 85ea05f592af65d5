// Package email delivers the storefront's transactional emails over SMTP.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Message is one rendered email.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Provider sends rendered messages.
type Provider interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig configures SMTPProvider.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPProvider sends mail through an SMTP relay with PLAIN auth.
type SMTPProvider struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTP builds an SMTP provider.
func NewSMTP(cfg SMTPConfig) *SMTPProvider {
	return &SMTPProvider{cfg: cfg, sendMail: smtp.SendMail}
}

func (p *SMTPProvider) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("send email: no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if p.cfg.Username != "" {
		auth = smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	if err := p.sendMail(addr, auth, envelopeSender(p.cfg.From), msg.To, p.encode(msg)); err != nil {
		return fmt.Errorf("send email to %s: %w", strings.Join(msg.To, ","), err)
	}
	return nil
}

func (p *SMTPProvider) encode(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", p.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", sanitizeHeader(msg.ReplyTo))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

// envelopeSender extracts the bare address from "Name <addr>".
func envelopeSender(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return from
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// NoopProvider drops messages; used when no SMTP host is configured.
type NoopProvider struct {
	logger *slog.Logger
}

func NewNoop(logger *slog.Logger) *NoopProvider {
	return &NoopProvider{logger: logger}
}

func (p *NoopProvider) Send(_ context.Context, msg Message) error {
	p.logger.Debug("email delivery disabled",
		slog.String("subject", msg.Subject),
		slog.Int("recipients", len(msg.To)),
	)
	return nil
}
