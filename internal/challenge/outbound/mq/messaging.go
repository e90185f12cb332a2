package mq

import (
	"context"
	"encoding/json"

	"github.com/openwrench/passcode/internal/challenge/usecase"
	"github.com/openwrench/passcode/internal/pkg/instrument"
	"github.com/openwrench/passcode/internal/pkg/messaging"
	"github.com/openwrench/passcode/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishChallengeIssued(ctx context.Context, msg usecase.ChallengeIssuedEvent) error {
	ctx, span := m.ins.Tracer("challenge.outbound.mq").Start(ctx, "PublishChallengeIssued")
	defer span.End()

	body, err := json.Marshal(event.ChallengeIssuedMessage{
		ChallengeID: msg.ChallengeID,
		Identity:    msg.Identity,
		Purpose:     msg.Purpose.String(),
		SubjectID:   msg.SubjectID,
		ExpiresAt:   msg.ExpiresAt.Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.ChallengeIssuedDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) PublishChallengeVerified(ctx context.Context, msg usecase.ChallengeVerifiedEvent) error {
	ctx, span := m.ins.Tracer("challenge.outbound.mq").Start(ctx, "PublishChallengeVerified")
	defer span.End()

	body, err := json.Marshal(event.ChallengeVerifiedMessage{
		ChallengeID: msg.ChallengeID,
		Identity:    msg.Identity,
		Purpose:     msg.Purpose.String(),
		SubjectID:   msg.SubjectID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.ChallengeVerifiedDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
