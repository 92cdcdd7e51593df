package deployment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/dispatch"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/ecs"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/events"
)

const (
	testCluster = "notified"
	testChannel = "event-integ-recycle"
	testReason  = "ECS deployment deploymentId in progress."
)

// recordingSender keeps every payload it is asked to send.
type recordingSender struct {
	payloads []*dispatch.Payload
	failOn   int
	err      error
}

func (s *recordingSender) Send(_ context.Context, payload *dispatch.Payload) error {
	if s.err != nil && len(s.payloads) == s.failOn {
		return s.err
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

func serviceARN(cluster, service string) string {
	return "arn:aws:ecs:eu-west-2:123456789012:service/" + cluster + "/" + service
}

func newEvent(eventName string, resources ...string) *events.DeploymentEvent {
	return &events.DeploymentEvent{
		Resources: resources,
		Detail: &events.DeploymentDetail{
			EventName: eventName,
			Reason:    testReason,
		},
	}
}

func setupNotifier(t *testing.T) (*recordingSender, *Notifier) {
	t.Helper()

	sender := &recordingSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return sender, NewNotifier(sender, testCluster, testChannel, logger)
}

type logRecord struct {
	Level     string `json:"level"`
	Msg       string `json:"msg"`
	EventName string `json:"eventName"`
	ARN       string `json:"arn"`
}

func decodeLogs(t *testing.T, buf *bytes.Buffer) []logRecord {
	t.Helper()

	var records []logRecord
	dec := json.NewDecoder(buf)
	for dec.More() {
		var r logRecord
		require.NoError(t, dec.Decode(&r))
		records = append(records, r)
	}
	return records
}

func TestNotify_MissingEventName(t *testing.T) {
	tests := []struct {
		name  string
		event *events.DeploymentEvent
	}{
		{name: "nil event", event: nil},
		{name: "no detail", event: &events.DeploymentEvent{Resources: []string{}}},
		{name: "no event name", event: &events.DeploymentEvent{Detail: &events.DeploymentDetail{Reason: "No reason"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, notifier := setupNotifier(t)

			_, err := notifier.Notify(context.Background(), tt.event)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingEventName)
			assert.EqualError(t, err, "Missing event name")
			assert.Empty(t, sender.payloads)
		})
	}
}

func TestNotify_UnknownEventName(t *testing.T) {
	sender, notifier := setupNotifier(t)

	_, err := notifier.Notify(context.Background(), newEvent("NOT_A_SERVICE_DEPLOYMENT", serviceARN(testCluster, "svc")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEventName)
	assert.Contains(t, err.Error(), "NOT_A_SERVICE_DEPLOYMENT")
	assert.Empty(t, sender.payloads)
}

func TestNotify_MalformedARNSendsNothing(t *testing.T) {
	sender, notifier := setupNotifier(t)

	event := newEvent(EventCompleted,
		serviceARN(testCluster, "first"),
		"arn:aws:ecs:eu-west-2:123456789012:task/notified/taskId",
	)

	_, err := notifier.Notify(context.Background(), event)
	require.Error(t, err)
	assert.ErrorIs(t, err, ecs.ErrMalformedARN)
	assert.EqualError(t, err, "ARN does not have service path")
	assert.Empty(t, sender.payloads)
}

func TestNotify_SendsForConfiguredClusterOnly(t *testing.T) {
	sender, notifier := setupNotifier(t)

	event := newEvent(EventInProgress,
		serviceARN(testCluster, "service-1"),
		serviceARN("unnotified", "service-other"),
		serviceARN(testCluster, "service-2"),
	)

	result, err := notifier.Notify(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, Result{Sent: 2, Skipped: 1}, result)

	require.Len(t, sender.payloads, 2)
	for i, service := range []string{"service-1", "service-2"} {
		expected := dispatch.NewPayload(dispatch.Notification{
			Channel:     testChannel,
			Description: "ECS service deployment in progress",
			ServiceName: service,
			ClusterName: testCluster,
			Reason:      testReason,
		})
		assert.Equal(t, expected, sender.payloads[i])
	}
}

func TestNotify_OtherClusterSendsNothing(t *testing.T) {
	sender, notifier := setupNotifier(t)

	result, err := notifier.Notify(context.Background(), newEvent(EventFailed, serviceARN("not-notified", "svc")))
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, result)
	assert.Empty(t, sender.payloads)
}

func TestNotify_EmptyResources(t *testing.T) {
	sender, notifier := setupNotifier(t)

	result, err := notifier.Notify(context.Background(), newEvent(EventCompleted))
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
	assert.Empty(t, sender.payloads)
}

func TestNotify_TemplateColors(t *testing.T) {
	tests := map[string]string{
		EventInProgress: "",
		EventCompleted:  ColorGood,
		EventFailed:     ColorDanger,
	}

	for eventName, color := range tests {
		t.Run(eventName, func(t *testing.T) {
			sender, notifier := setupNotifier(t)

			_, err := notifier.Notify(context.Background(), newEvent(eventName, serviceARN(testCluster, "svc")))
			require.NoError(t, err)

			require.Len(t, sender.payloads, 1)
			assert.Equal(t, color, sender.payloads[0].MessageContent.Color)
		})
	}
}

func TestNotify_SendErrorAborts(t *testing.T) {
	sender, notifier := setupNotifier(t)
	sender.err = dispatch.ErrSinkUnavailable
	sender.failOn = 1

	event := newEvent(EventCompleted,
		serviceARN(testCluster, "service-1"),
		serviceARN(testCluster, "service-2"),
		serviceARN(testCluster, "service-3"),
	)

	result, err := notifier.Notify(context.Background(), event)
	require.Error(t, err)
	assert.ErrorIs(t, err, dispatch.ErrSinkUnavailable)
	assert.Contains(t, err.Error(), serviceARN(testCluster, "service-2"))
	assert.Equal(t, 1, result.Sent)
	assert.Len(t, sender.payloads, 1)
}

func TestNotify_AuditLogOrder(t *testing.T) {
	var buf bytes.Buffer
	sender := &recordingSender{}
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	notifier := NewNotifier(sender, testCluster, testChannel, logger)

	resources := []string{
		serviceARN("unnotified", "a"),
		serviceARN(testCluster, "b"),
		serviceARN("unnotified", "c"),
	}

	_, err := notifier.Notify(context.Background(), newEvent(EventInProgress, resources...))
	require.NoError(t, err)

	records := decodeLogs(t, &buf)
	require.Len(t, records, 3)

	assert.Equal(t, logRecord{Level: "DEBUG", Msg: "ignoring event", EventName: EventInProgress, ARN: resources[0]}, records[0])
	assert.Equal(t, logRecord{Level: "INFO", Msg: "sending notification", EventName: EventInProgress, ARN: resources[1]}, records[1])
	assert.Equal(t, logRecord{Level: "DEBUG", Msg: "ignoring event", EventName: EventInProgress, ARN: resources[2]}, records[2])
}

func TestNotify_InfoLevelHidesSkips(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	notifier := NewNotifier(&recordingSender{}, testCluster, testChannel, logger)

	_, err := notifier.Notify(context.Background(), newEvent(EventInProgress,
		serviceARN("unnotified", "a"),
		serviceARN(testCluster, "b"),
	))
	require.NoError(t, err)

	records := decodeLogs(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "sending notification", records[0].Msg)
}

func TestNotify_Idempotent(t *testing.T) {
	event := newEvent(EventFailed,
		serviceARN(testCluster, "service-1"),
		serviceARN(testCluster, "service-2"),
	)

	encode := func() []byte {
		var buf bytes.Buffer
		sender := dispatch.NewWriterSender(&buf)
		notifier := NewNotifier(sender, testCluster, testChannel, slog.New(slog.NewTextHandler(io.Discard, nil)))

		_, err := notifier.Notify(context.Background(), event)
		require.NoError(t, err)
		return buf.Bytes()
	}

	first := encode()
	second := encode()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}
