package email

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/gateway"
)

// Module provides the Mailer. Without SMTP_HOST messages are only logged.
var Module = fx.Provide(
	newProvider,
	newMailer,
)

func newProvider(cfg *config.Config, logger *slog.Logger) Provider {
	if cfg.SMTP.Host == "" {
		return NewNoop(logger)
	}
	return NewSMTP(SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
}

func newMailer(p Provider, cfg *config.Config) gateway.Mailer {
	support := cfg.SupportEmail
	if support == "" {
		support = envelopeSender(cfg.SMTP.From)
	}
	return NewMailer(p, cfg.SiteURL, support)
}
