package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/g-result/uoden/internal/config"
	apperrors "github.com/g-result/uoden/internal/errors"
)

// MailgunSender delivers through the Mailgun API
type MailgunSender struct {
	mg       *mailgun.MailgunImpl
	from     string
	fromName string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewMailgunSender creates a Mailgun-backed sender
func NewMailgunSender(cfg config.MailConfig, logger *slog.Logger) *MailgunSender {
	return &MailgunSender{
		mg:       mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey),
		from:     cfg.From,
		fromName: cfg.FromName,
		timeout:  cfg.Timeout,
		logger:   logger.With(slog.String("component", "mailgun_sender")),
	}
}

// Send transmits the message through the Mailgun API
func (m *MailgunSender) Send(ctx context.Context, msg Message) error {
	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}

	message := m.mg.NewMessage(from, msg.Subject, msg.Body, msg.To)
	if len(msg.Attachment) > 0 {
		message.AddBufferAttachment(msg.Filename, msg.Attachment)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	resp, id, err := m.mg.Send(ctx, message)
	if err != nil {
		return apperrors.NewDeliveryFailedError("mailgun rejected message", err).
			WithContext("filename", msg.Filename)
	}

	m.logger.InfoContext(ctx, "mail sent",
		slog.String("to", msg.To),
		slog.String("filename", msg.Filename),
		slog.String("message_id", id),
		slog.String("response", resp))
	return nil
}
