// Package mailer is the delivery collaborator for finished export
// payloads. It transmits; it never builds or inspects report content.
package mailer

import (
	"context"
	"log/slog"

	"github.com/g-result/uoden/internal/config"
)

// Message is one outbound mail with a single attachment
type Message struct {
	From        string
	FromName    string
	To          string
	Subject     string
	Body        string
	Attachment  []byte
	Filename    string
	ContentType string
}

// Sender transmits a finished payload plus routing metadata
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New selects a Sender implementation from configuration. Incomplete
// provider settings fall back to the mock sender so a misconfigured
// environment logs instead of silently dropping exports.
func New(cfg config.MailConfig, logger *slog.Logger) Sender {
	switch cfg.Provider {
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
			logger.Warn("mailgun configuration incomplete, falling back to mock sender")
			return NewMockSender(logger)
		}
		return NewMailgunSender(cfg, logger)
	case "smtp":
		if cfg.SMTPHost == "" {
			logger.Warn("smtp configuration incomplete, falling back to mock sender")
			return NewMockSender(logger)
		}
		return NewSMTPSender(cfg, logger)
	default:
		return NewMockSender(logger)
	}
}
