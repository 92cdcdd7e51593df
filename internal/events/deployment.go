// Package events provides the inbound event types for the ECS deployment notifier.
package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
)

// DetailTypeDeploymentStateChange is the EventBridge detail-type emitted by ECS for deployments.
const DetailTypeDeploymentStateChange = "ECS Deployment State Change"

// DeploymentDetail is the detail section of an ECS deployment state change event.
type DeploymentDetail struct {
	EventType    string `json:"eventType"`
	EventName    string `json:"eventName"`
	DeploymentID string `json:"deploymentId"`
	UpdatedAt    string `json:"updatedAt"`
	Reason       string `json:"reason"`
}

// DeploymentEvent is the EventBridge envelope of an ECS deployment state change.
// Detail is nil when the envelope carried no detail.
type DeploymentEvent struct {
	Version    string            `json:"version"`
	ID         string            `json:"id"`
	DetailType string            `json:"detail-type"`
	Source     string            `json:"source"`
	AccountID  string            `json:"account"`
	Time       time.Time         `json:"time"`
	Region     string            `json:"region"`
	Resources  []string          `json:"resources"`
	Detail     *DeploymentDetail `json:"detail,omitempty"`
}

// FromCloudWatchEvent converts the generic Lambda event envelope into a DeploymentEvent.
func FromCloudWatchEvent(event lambdaevents.CloudWatchEvent) (*DeploymentEvent, error) {
	out := &DeploymentEvent{
		Version:    event.Version,
		ID:         event.ID,
		DetailType: event.DetailType,
		Source:     event.Source,
		AccountID:  event.AccountID,
		Time:       event.Time,
		Region:     event.Region,
		Resources:  event.Resources,
	}

	raw := bytes.TrimSpace(event.Detail)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, nil
	}

	var detail DeploymentDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("cannot parse event detail: %w", err)
	}
	out.Detail = &detail

	return out, nil
}
