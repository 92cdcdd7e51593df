package dispatch

import "encoding/json"

// Username is the sender label shown on every notification.
const Username = "ecs_service_deployment_notifications"

// Field is a single attachment field of a Slack message.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// MessageContent is the structured body of a notification.
// Color is omitted entirely when empty.
type MessageContent struct {
	Color  string  `json:"color,omitempty"`
	Fields []Field `json:"fields"`
}

// Payload is the message handed to the Slack notifications relay.
type Payload struct {
	Channels       []string       `json:"channels"`
	Username       string         `json:"username"`
	Text           string         `json:"text"`
	MessageContent MessageContent `json:"message_content"`
}

// Notification holds the values a payload is built from.
type Notification struct {
	Channel     string
	Description string
	Color       string
	ServiceName string
	ClusterName string
	Reason      string
}

// NewPayload builds the relay payload for a single service. The field order is fixed.
func NewPayload(n Notification) *Payload {
	return &Payload{
		Channels: []string{n.Channel},
		Username: Username,
		Text:     n.Description,
		MessageContent: MessageContent{
			Color: n.Color,
			Fields: []Field{
				{Short: true, Title: "Service Name", Value: n.ServiceName},
				{Short: true, Title: "Cluster Name", Value: n.ClusterName},
				{Short: false, Title: "Reason", Value: n.Reason},
			},
		},
	}
}

func (p *Payload) marshal() ([]byte, error) {
	return json.Marshal(p)
}
