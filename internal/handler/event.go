package handler

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/deployment"
	deploymentevents "github.com/ab0utbla-k/ecs-deployment-notifier/internal/events"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/metrics"
)

// Notifier processes a single deployment event.
type Notifier interface {
	Notify(ctx context.Context, event *deploymentevents.DeploymentEvent) (deployment.Result, error)
}

type EventHandler struct {
	notifier Notifier
	recorder metrics.Recorder
	logger   *slog.Logger
}

func NewEventHandler(notifier Notifier, recorder metrics.Recorder, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		notifier: notifier,
		recorder: recorder,
		logger:   logger,
	}
}

// HandleRequest processes one ECS deployment state change event.
// Every error is returned as-is so the invocation fails.
func (h *EventHandler) HandleRequest(ctx context.Context, event events.CloudWatchEvent) error {
	h.logger.DebugContext(ctx, "received event", slog.Any("event", event))

	deploymentEvent, err := deploymentevents.FromCloudWatchEvent(event)
	if err != nil {
		h.logger.ErrorContext(
			ctx,
			"invalid event",
			slog.String("eventID", event.ID),
			slog.String("error", err.Error()),
		)
		return err
	}

	var eventName string
	if deploymentEvent.Detail != nil {
		eventName = deploymentEvent.Detail.EventName
	}

	result, err := h.notifier.Notify(ctx, deploymentEvent)
	if err != nil {
		h.logger.ErrorContext(
			ctx,
			"cannot process deployment event",
			slog.String("eventID", event.ID),
			slog.String("eventName", eventName),
			slog.Int("sent", result.Sent),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := h.recorder.Record(ctx, eventName, result.Sent, result.Skipped); err != nil {
		h.logger.WarnContext(
			ctx,
			"cannot record metrics",
			slog.String("eventName", eventName),
			slog.String("error", err.Error()),
		)
	}

	h.logger.InfoContext(
		ctx,
		"deployment event processed",
		slog.String("eventID", event.ID),
		slog.String("eventName", eventName),
		slog.Int("sent", result.Sent),
		slog.Int("skipped", result.Skipped),
	)

	return nil
}
