package delivery

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSConfig configures the Twilio-backed SMS channel.
type SMSConfig struct {
	// AccountSID is the Twilio account identifier.
	AccountSID string
	// AuthToken is the Twilio API credential.
	AuthToken string
	// From is the sending phone number in E.164.
	From string
}

// SMS delivers code messages as text messages through Twilio.
type SMS struct {
	client *twilio.RestClient
	from   string
}

// NewSMS constructs the SMS channel. An incomplete config yields a channel
// that reports unavailable instead of an error, so deployments without SMS
// still start.
func NewSMS(cfg SMSConfig) *SMS {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return &SMS{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &SMS{client: client, from: cfg.From}
}

// Available reports whether Twilio credentials are configured.
func (s *SMS) Available() bool {
	return s.client != nil
}

// Send delivers the message to the destination phone number.
func (s *SMS) Send(ctx context.Context, destination, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.client == nil {
		return fmt.Errorf("delivery: sms channel is not configured")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(destination)
	params.SetBody(message)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("delivery: twilio create message: %w", err)
	}

	return nil
}
