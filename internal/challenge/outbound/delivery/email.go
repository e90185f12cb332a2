package delivery

import (
	"context"
	"fmt"

	"github.com/openwrench/passcode/internal/pkg/mail"
)

// Email delivers code messages through the mail provider.
type Email struct {
	mailer  mail.Mail
	subject string
}

// NewEmail constructs the email channel. A nil mailer yields a channel that
// reports unavailable.
func NewEmail(mailer mail.Mail, subject string) *Email {
	if subject == "" {
		subject = "Your verification code"
	}
	return &Email{mailer: mailer, subject: subject}
}

// Available reports whether a mail provider is configured.
func (e *Email) Available() bool {
	return e.mailer != nil
}

// Send delivers the message to the destination address.
func (e *Email) Send(ctx context.Context, destination, message string) error {
	if e.mailer == nil {
		return fmt.Errorf("delivery: email channel is not configured")
	}

	err := e.mailer.Send(ctx, mail.Message{
		To:       []string{destination},
		Subject:  e.subject,
		TextBody: message,
	})
	if err != nil {
		return fmt.Errorf("delivery: send mail: %w", err)
	}

	return nil
}
