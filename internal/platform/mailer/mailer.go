// Package mailer provides outbound email delivery for the application.
// It defines a transport-agnostic Mailer interface plus an SMTP
// implementation used in production.
package mailer

import "context"

// Mailer defines the interface for sending plain-text email.
type Mailer interface {
	// Send delivers a message to a single recipient.
	// Implementations should honor context cancellation where the
	// underlying transport allows it.
	Send(ctx context.Context, to, subject, body string) error
}
