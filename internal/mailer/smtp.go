package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"

	"github.com/g-result/uoden/internal/config"
	apperrors "github.com/g-result/uoden/internal/errors"
)

// SMTPSender delivers through a plain SMTP relay
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	logger   *slog.Logger
}

// NewSMTPSender creates an SMTP-backed sender
func NewSMTPSender(cfg config.MailConfig, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		logger:   logger.With(slog.String("component", "smtp_sender")),
	}
}

// Send transmits the message. The context deadline is honored between
// attempts only; net/smtp itself does not take a context.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewDeliveryFailedError("send canceled", err)
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}

	payload := BuildMIME(msg)
	if err := smtp.SendMail(addr, auth, msg.From, []string{msg.To}, payload); err != nil {
		return apperrors.NewDeliveryFailedError("smtp relay rejected message", err).
			WithContext("relay", addr).
			WithContext("filename", msg.Filename)
	}

	s.logger.InfoContext(ctx, "mail sent",
		slog.String("to", msg.To),
		slog.String("filename", msg.Filename),
		slog.Int("attachment_bytes", len(msg.Attachment)))
	return nil
}

const mimeBoundary = "uoden-attachment-boundary"

// BuildMIME assembles a multipart/mixed message with one base64-encoded
// attachment. Header values with non-ASCII text are MIME-word encoded.
func BuildMIME(msg Message) []byte {
	var buf bytes.Buffer

	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", msg.FromName), msg.From)
	}

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", mimeBoundary)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.Body)
	buf.WriteString("\r\n")

	contentType := msg.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
	fmt.Fprintf(&buf, "Content-Type: %s\r\n", contentType)
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n", msg.Filename)
	buf.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString(msg.Attachment)
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
	buf.WriteString("\r\n")
	fmt.Fprintf(&buf, "--%s--\r\n", mimeBoundary)

	return buf.Bytes()
}
