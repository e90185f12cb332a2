// Package delivery sends one-time codes to their destination over SMS or
// email. Channels report availability up front so issuance can refuse before
// persisting anything, and a selector routes each destination by its shape.
package delivery

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// Channel is one way to push a code message to a destination.
type Channel interface {
	// Available reports whether the channel is configured and usable.
	Available() bool
	// Send delivers the message to the destination.
	Send(ctx context.Context, destination, message string) error
}

var reE164 = regexp.MustCompile(`^\+[1-9][0-9]{1,14}$`)

// Selector routes a destination to the SMS or email channel by shape: E.164
// numbers go to SMS, anything else is treated as an email address. Validation
// upstream guarantees the destination is one of the two.
type Selector struct {
	sms   Channel
	email Channel
}

// NewSelector builds a Selector over the two channels.
func NewSelector(sms, email Channel) *Selector {
	return &Selector{sms: sms, email: email}
}

// Resolve returns the channel responsible for the destination.
func (s *Selector) Resolve(destination string) Channel {
	if reE164.MatchString(destination) {
		return s.sms
	}
	return s.email
}

// CodeMessage renders the message body carrying the code.
func CodeMessage(code string, validity time.Duration) string {
	minutes := int(validity.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("Your verification code is %s. Valid for %d minutes.", code, minutes)
}
