package email

import "context"

// Email represents a message to be sent.
type Email struct {
	To       []string
	From     string
	Subject  string
	TextBody string
}

// Sender sends emails. Implementations can use SMTP, Postmark, SES, etc.
type Sender interface {
	// Send sends an email and returns the provider's message ID when one
	// is available.
	Send(ctx context.Context, email *Email) (string, error)
}

// MockSender is a test implementation of Sender.
type MockSender struct {
	SendFunc func(ctx context.Context, email *Email) (string, error)

	Sent []*Email
}

// Send records the email and delegates to the configured function.
func (m *MockSender) Send(ctx context.Context, email *Email) (string, error) {
	m.Sent = append(m.Sent, email)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, email)
	}
	return "mock-message-id", nil
}
