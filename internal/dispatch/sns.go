package dispatch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/config"
)

// SNSAPI defines required SNS operations.
type SNSAPI interface {
	Publish(
		ctx context.Context,
		input *sns.PublishInput,
		optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender publishes payloads to an SNS topic.
type SNSSender struct {
	client   SNSAPI
	topicARN string
}

func NewSNSSender(client SNSAPI, topicARN string) *SNSSender {
	return &SNSSender{
		client:   client,
		topicARN: topicARN,
	}
}

func (s *SNSSender) Send(ctx context.Context, payload *Payload) error {
	ctx, span := tracer.Start(ctx, "dispatch.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("dispatch.target", string(config.TargetSNS)),
		attribute.String("sns.topic_arn", s.topicARN),
	)

	body, err := payload.marshal()
	if err != nil {
		return fmt.Errorf("cannot marshal payload: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(payload.Text),
		Message:  aws.String(string(body)),
	}

	if _, err = s.client.Publish(ctx, input); err != nil {
		return sinkError("publish to", s.topicARN, err)
	}

	return nil
}
