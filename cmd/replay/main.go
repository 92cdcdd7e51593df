// Package main implements a local replay tool for ECS deployment state change events.
//
// It feeds EventBridge event JSON files through the same handler the Lambda function
// uses. By default payloads are printed to stdout instead of being sent to the relay.
//
// Usage:
//
//	go run ./cmd/replay -cluster=notified -channel=deployments event.json
//	go run ./cmd/replay -send event.json
//	cat event.json | go run ./cmd/replay -
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"

	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/config"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/deployment"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/dispatch"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/env"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/handler"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/metrics"
	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/telemetry"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
}

type options struct {
	envFile  string
	cluster  string
	channel  string
	logLevel string
	send     bool
	files    []string
}

func parseOptions(args []string, stderr io.Writer) (*options, error) {
	flags := flag.NewFlagSet("replay", flag.ContinueOnError)
	flags.SetOutput(stderr)

	opts := &options{}
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment (ignored if absent)")
	flags.StringVar(&opts.cluster, "cluster", "", "cluster to notify for (default: $CLUSTER_NAME)")
	flags.StringVar(&opts.channel, "channel", "", "Slack channel (default: $SLACK_CHANNEL)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (default: $LOG_LEVEL or INFO)")
	flags.BoolVar(&opts.send, "send", false, "send to the configured relay instead of printing payloads")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: replay [flags] <event.json|-> ...\n\n")
		fmt.Fprintf(stderr, "Recognized event names: %s\n\n", strings.Join(deployment.EventNames(), ", "))
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	opts.files = flags.Args()
	if len(opts.files) == 0 {
		flags.Usage()
		return nil, errors.New("no event files given")
	}

	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return err
	}

	if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot load %s: %w", opts.envFile, err)
	}

	h, err := newHandler(ctx, opts, stdout, stderr)
	if err != nil {
		return err
	}

	for _, name := range opts.files {
		event, err := readEvent(name, stdin)
		if err != nil {
			return err
		}

		if err := h.HandleRequest(ctx, event); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

func newHandler(ctx context.Context, opts *options, stdout, stderr io.Writer) (*handler.EventHandler, error) {
	level := env.Get("LOG_LEVEL", slog.LevelInfo, env.ParseLogLevel)
	if opts.logLevel != "" {
		parsed, err := env.ParseLogLevel(opts.logLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}
	logger := telemetry.NewLogger(stderr, level)

	if !opts.send {
		cluster := firstNonEmpty(opts.cluster, env.Get("CLUSTER_NAME", "", env.ParseString))
		channel := firstNonEmpty(opts.channel, env.Get("SLACK_CHANNEL", "", env.ParseString))
		if cluster == "" || channel == "" {
			return nil, errors.New("cluster and channel are required (flags or CLUSTER_NAME and SLACK_CHANNEL)")
		}

		notifier := deployment.NewNotifier(dispatch.NewWriterSender(stdout), cluster, channel, logger)
		return handler.NewEventHandler(notifier, metrics.NopRecorder{}, logger), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	if opts.cluster != "" {
		cfg.ClusterName = opts.cluster
	}
	if opts.channel != "" {
		cfg.SlackChannel = opts.channel
	}

	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(loadCtx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("cannot load aws config: %w", err)
	}

	sender, err := dispatch.NewSender(awsCfg, cfg)
	if err != nil {
		return nil, err
	}

	notifier := deployment.NewNotifier(sender, cfg.ClusterName, cfg.SlackChannel, logger)
	return handler.NewEventHandler(notifier, metrics.NopRecorder{}, logger), nil
}

func readEvent(name string, stdin io.Reader) (lambdaevents.CloudWatchEvent, error) {
	var event lambdaevents.CloudWatchEvent

	var r io.Reader = stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return event, err
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&event); err != nil {
		return event, fmt.Errorf("cannot decode event %s: %w", name, err)
	}

	return event, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
