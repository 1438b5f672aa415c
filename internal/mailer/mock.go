package mailer

import (
	"context"
	"log/slog"
	"sync"
)

// MockSender logs instead of sending. It is the default provider and
// doubles as the recording fake in tests.
type MockSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

// NewMockSender creates a mock sender
func NewMockSender(logger *slog.Logger) *MockSender {
	return &MockSender{logger: logger.With(slog.String("component", "mock_sender"))}
}

// Send records the message and logs it
func (m *MockSender) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "mock mail send",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("filename", msg.Filename),
		slog.Int("attachment_bytes", len(msg.Attachment)))
	return nil
}

// Sent returns a copy of every recorded message
func (m *MockSender) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
