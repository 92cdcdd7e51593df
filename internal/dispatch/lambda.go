package dispatch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/config"
)

// LambdaAPI defines the Lambda operations required for invoking the relay function.
type LambdaAPI interface {
	Invoke(
		ctx context.Context,
		params *lambda.InvokeInput,
		optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaSender invokes the Slack notifications function asynchronously.
type LambdaSender struct {
	client      LambdaAPI
	functionARN string
}

// NewLambdaSender creates a new LambdaSender instance.
func NewLambdaSender(client LambdaAPI, functionARN string) *LambdaSender {
	return &LambdaSender{
		client:      client,
		functionARN: functionARN,
	}
}

// Send queues an Event invocation of the relay function with the payload as input.
func (s *LambdaSender) Send(ctx context.Context, payload *Payload) error {
	ctx, span := tracer.Start(ctx, "dispatch.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("dispatch.target", string(config.TargetLambda)),
		attribute.String("lambda.function_arn", s.functionARN),
	)

	body, err := payload.marshal()
	if err != nil {
		return fmt.Errorf("cannot marshal payload: %w", err)
	}

	out, err := s.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(s.functionARN),
		InvocationType: types.InvocationTypeEvent,
		Payload:        body,
	})
	if err != nil {
		return sinkError("invoke", s.functionARN, err)
	}

	if out.StatusCode != http.StatusAccepted {
		return sinkError("invoke", s.functionARN, fmt.Errorf("unexpected status code %d", out.StatusCode))
	}

	return nil
}
