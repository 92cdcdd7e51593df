package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/config"
)

const (
	eventSource     = "ecs.deployment.notifier"
	eventDetailType = "ECS Service Deployment Notification"
)

// EventBridgeAPI defines the EventBridge operations required for sending events.
type EventBridgeAPI interface {
	PutEvents(
		ctx context.Context,
		params *eventbridge.PutEventsInput,
		optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgeSender puts payloads on an EventBridge event bus.
type EventBridgeSender struct {
	client      EventBridgeAPI
	eventBusARN string
}

// NewEventBridgeSender creates a new EventBridgeSender instance.
func NewEventBridgeSender(client EventBridgeAPI, eventBusARN string) *EventBridgeSender {
	return &EventBridgeSender{
		client:      client,
		eventBusARN: eventBusARN,
	}
}

// Send publishes the payload as the detail of a single event.
func (s *EventBridgeSender) Send(ctx context.Context, payload *Payload) error {
	ctx, span := tracer.Start(ctx, "dispatch.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("dispatch.target", string(config.TargetEventBridge)),
		attribute.String("eventbus.arn", s.eventBusARN),
	)

	body, err := payload.marshal()
	if err != nil {
		return fmt.Errorf("cannot marshal payload: %w", err)
	}

	params := &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			Detail:       aws.String(string(body)),
			DetailType:   aws.String(eventDetailType),
			EventBusName: aws.String(s.eventBusARN),
			Source:       aws.String(eventSource),
		}},
	}

	out, err := s.client.PutEvents(ctx, params)
	if err != nil {
		return sinkError("put event to", s.eventBusARN, err)
	}

	if out.FailedEntryCount > 0 {
		entry := out.Entries[0]
		return sinkError("put event to", s.eventBusARN,
			errors.New(aws.ToString(entry.ErrorCode)+" - "+aws.ToString(entry.ErrorMessage)))
	}

	return nil
}
