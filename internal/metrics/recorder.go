// Package metrics publishes notification delivery counts to CloudWatch.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/ecs-deployment-notifier/internal/metrics")

const (
	MetricSent    = "NotificationsSent"
	MetricSkipped = "NotificationsSkipped"
)

// Recorder records the outcome of processing one deployment event.
type Recorder interface {
	Record(ctx context.Context, eventName string, sent, skipped int) error
}

// CloudWatchAPI defines the CloudWatch operations required for publishing metrics.
type CloudWatchAPI interface {
	PutMetricData(
		ctx context.Context,
		params *cloudwatch.PutMetricDataInput,
		optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchRecorder publishes counts as CloudWatch metrics with
// ClusterName and EventName dimensions.
type CloudWatchRecorder struct {
	cw        CloudWatchAPI
	namespace string
	cluster   string
	now       func() time.Time
}

func NewCloudWatchRecorder(cw CloudWatchAPI, namespace, cluster string) *CloudWatchRecorder {
	return &CloudWatchRecorder{
		cw:        cw,
		namespace: namespace,
		cluster:   cluster,
		now:       time.Now,
	}
}

func (r *CloudWatchRecorder) Record(ctx context.Context, eventName string, sent, skipped int) error {
	ctx, span := tracer.Start(ctx, "metrics.record")
	defer span.End()
	span.SetAttributes(
		attribute.String("metrics.namespace", r.namespace),
		attribute.String("deployment.event_name", eventName),
	)

	dimensions := []types.Dimension{
		{Name: aws.String("ClusterName"), Value: aws.String(r.cluster)},
		{Name: aws.String("EventName"), Value: aws.String(eventName)},
	}
	timestamp := r.now()

	_, err := r.cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(r.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(MetricSent),
				Dimensions: dimensions,
				Timestamp:  aws.Time(timestamp),
				Unit:       types.StandardUnitCount,
				Value:      aws.Float64(float64(sent)),
			},
			{
				MetricName: aws.String(MetricSkipped),
				Dimensions: dimensions,
				Timestamp:  aws.Time(timestamp),
				Unit:       types.StandardUnitCount,
				Value:      aws.Float64(float64(skipped)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("cannot put metric data to %q: %w", r.namespace, err)
	}

	return nil
}

// NopRecorder discards everything. It is used when no namespace is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, string, int, int) error {
	return nil
}
