package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/config"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/deployment"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/dispatch"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/handler"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/metrics"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/telemetry"
)

func main() {
	startTime := time.Now()
	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("cannot load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := telemetry.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Error("cannot load aws config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	sender, err := dispatch.NewSender(awsCfg, cfg)
	if err != nil {
		logger.Error("cannot create sender", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var recorder metrics.Recorder = metrics.NopRecorder{}
	if cfg.MetricsNamespace != "" {
		recorder = metrics.NewCloudWatchRecorder(cloudwatch.NewFromConfig(awsCfg), cfg.MetricsNamespace, cfg.ClusterName)
	}

	tp, err := telemetry.NewTracerProvider(ctx)
	if err != nil {
		logger.Error("cannot initialize tracer provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("cannot shutdown tracer provider", slog.String("error", err.Error()))
		}
	}()

	logger.Info(
		"started ecs deployment notifier",
		slog.String("cluster", cfg.ClusterName),
		slog.String("channel", cfg.SlackChannel),
		slog.String("target", string(cfg.RelayTarget)),
		slog.String("region", cfg.AWSRegion),
		slog.Bool("metrics", cfg.MetricsNamespace != ""),
		slog.Float64("initDurationSec", time.Since(startTime).Seconds()),
	)

	notifier := deployment.NewNotifier(sender, cfg.ClusterName, cfg.SlackChannel, logger)
	h := handler.NewEventHandler(notifier, recorder, logger)
	lambda.Start(
		otellambda.InstrumentHandler(
			h.HandleRequest,
			otellambda.WithTracerProvider(tp),
			otellambda.WithFlusher(tp)),
	)
}
