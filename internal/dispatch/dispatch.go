// Package dispatch delivers deployment notification payloads to a relay.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.opentelemetry.io/otel"

	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/config"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/ecs-deployment-notifier/internal/dispatch")

// ErrSinkUnavailable indicates the relay could not accept a notification.
var ErrSinkUnavailable = errors.New("notification sink unavailable")

// Sender sends notification payloads to a relay.
type Sender interface {
	// Send hands the payload to the relay. It returns once the relay has accepted
	// the request for delivery, not once the notification has been delivered.
	Send(ctx context.Context, payload *Payload) error
}

// NewSender creates a Sender implementation based on the configured relay target.
// Supported targets: lambda, sns, eventbridge.
// Returns an error if the relay target is unknown.
func NewSender(awsCfg aws.Config, cfg *config.Config) (Sender, error) {
	switch cfg.RelayTarget {
	case config.TargetLambda:
		return NewLambdaSender(lambda.NewFromConfig(awsCfg), cfg.SlackNotificationsLambda), nil

	case config.TargetSNS:
		return NewSNSSender(sns.NewFromConfig(awsCfg), cfg.SNSTopicARN), nil

	case config.TargetEventBridge:
		return NewEventBridgeSender(eventbridge.NewFromConfig(awsCfg), cfg.EventBusARN), nil

	default:
		return nil, fmt.Errorf("unknown relay target: %s", cfg.RelayTarget)
	}
}

func sinkError(op, destination string, err error) error {
	return fmt.Errorf("%w: cannot %s %q: %w", ErrSinkUnavailable, op, destination, err)
}
