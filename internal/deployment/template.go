// Package deployment turns ECS deployment state change events into relay notifications.
package deployment

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

const (
	EventInProgress = "SERVICE_DEPLOYMENT_IN_PROGRESS"
	EventCompleted  = "SERVICE_DEPLOYMENT_COMPLETED"
	EventFailed     = "SERVICE_DEPLOYMENT_FAILED"
)

const (
	ColorGood   = "good"
	ColorDanger = "danger"
)

var (
	// ErrMissingEventName indicates the event has no detail.eventName.
	ErrMissingEventName = errors.New("Missing event name")
	// ErrUnknownEventName indicates detail.eventName is not a deployment event this notifier handles.
	ErrUnknownEventName = errors.New("unexpected event name")
)

// UnknownEventNameError reports an event name with no template.
type UnknownEventNameError struct {
	EventName string
}

func (e *UnknownEventNameError) Error() string {
	return fmt.Sprintf("Unexpected event name %s", e.EventName)
}

func (e *UnknownEventNameError) Is(target error) bool {
	return target == ErrUnknownEventName
}

// Template describes how a deployment event is rendered.
// An empty Color means the notification carries no severity.
type Template struct {
	Description string
	Color       string
}

var templates = map[string]Template{
	EventInProgress: {
		Description: "ECS service deployment in progress",
	},
	EventCompleted: {
		Description: "ECS service deployment completed",
		Color:       ColorGood,
	},
	EventFailed: {
		Description: "ECS service deployment failed",
		Color:       ColorDanger,
	},
}

// Classify returns the template for eventName.
func Classify(eventName string) (Template, error) {
	tmpl, ok := templates[eventName]
	if !ok {
		return Template{}, &UnknownEventNameError{EventName: eventName}
	}
	return tmpl, nil
}

// EventNames lists the recognized event names in sorted order.
func EventNames() []string {
	return slices.Sorted(maps.Keys(templates))
}
