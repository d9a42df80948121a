package mocks

import (
	"context"

	"github.com/rgoodall/taskly-api/internal/platform/mailer"
)

// SentMail records one message delivered through the mock mailer.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MockMailer implements mailer.Mailer for testing. It records every message
// so tests can assert on recipients and bodies.
type MockMailer struct {
	// SendFn allows test cases to mock the Send behavior
	SendFn func(ctx context.Context, to, subject, body string) error

	// SendError is returned by the default implementation
	SendError error

	// Sent holds every message delivered through the default implementation
	Sent []SentMail
}

// Ensure MockMailer implements mailer.Mailer
var _ mailer.Mailer = (*MockMailer)(nil)

// Send implements the mailer.Mailer interface
func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.SendFn != nil {
		return m.SendFn(ctx, to, subject, body)
	}

	if m.SendError != nil {
		return m.SendError
	}

	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}
