package deployment

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/dispatch"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/ecs"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/events"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/ecs-deployment-notifier/internal/deployment")

// Result counts the decisions made for a single event.
type Result struct {
	Sent    int
	Skipped int
}

// Notifier forwards deployment events for services in a single cluster.
type Notifier struct {
	sender  dispatch.Sender
	cluster string
	channel string
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that sends to channel for services in cluster.
func NewNotifier(sender dispatch.Sender, cluster, channel string, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender:  sender,
		cluster: cluster,
		channel: channel,
		logger:  logger,
	}
}

// Notify classifies the event, parses every resource ARN and sends one notification
// per service in the configured cluster, in resource order.
// Nothing is sent if any resource ARN is malformed. The first send failure aborts the remaining sends.
func (n *Notifier) Notify(ctx context.Context, event *events.DeploymentEvent) (Result, error) {
	var result Result

	if event == nil || event.Detail == nil || event.Detail.EventName == "" {
		return result, ErrMissingEventName
	}

	eventName := event.Detail.EventName

	ctx, span := tracer.Start(ctx, "deployment.notify")
	defer span.End()
	span.SetAttributes(
		attribute.String("deployment.event_name", eventName),
		attribute.String("ecs.cluster", n.cluster),
		attribute.Int("deployment.resources", len(event.Resources)),
	)

	tmpl, err := Classify(eventName)
	if err != nil {
		return result, err
	}

	arns, err := ecs.ParseServiceARNs(event.Resources)
	if err != nil {
		return result, err
	}

	for _, arn := range arns {
		if arn.ClusterName != n.cluster {
			n.logger.DebugContext(
				ctx,
				"ignoring event",
				slog.String("eventName", eventName),
				slog.String("arn", arn.ARN),
			)
			result.Skipped++
			continue
		}

		n.logger.InfoContext(
			ctx,
			"sending notification",
			slog.String("eventName", eventName),
			slog.String("arn", arn.ARN),
		)

		payload := dispatch.NewPayload(dispatch.Notification{
			Channel:     n.channel,
			Description: tmpl.Description,
			Color:       tmpl.Color,
			ServiceName: arn.ServiceName,
			ClusterName: arn.ClusterName,
			Reason:      event.Detail.Reason,
		})

		if err := n.sender.Send(ctx, payload); err != nil {
			return result, fmt.Errorf("cannot send notification for %q: %w", arn.ARN, err)
		}
		result.Sent++
	}

	span.SetAttributes(
		attribute.Int("deployment.sent", result.Sent),
		attribute.Int("deployment.skipped", result.Skipped),
	)

	return result, nil
}
