package config

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/env"
)

type RelayTarget string

const (
	TargetLambda      RelayTarget = "lambda"
	TargetSNS         RelayTarget = "sns"
	TargetEventBridge RelayTarget = "eventbridge"
)

type Config struct {
	AWSRegion string `env:"AWS_REGION" validate:"required"`

	ClusterName  string `env:"CLUSTER_NAME" validate:"required"`
	SlackChannel string `env:"SLACK_CHANNEL" validate:"required"`

	RelayTarget              RelayTarget `env:"RELAY_TARGET" validate:"oneof=lambda sns eventbridge"`
	SlackNotificationsLambda string      `env:"SLACK_NOTIFICATIONS_LAMBDA_ARN" validate:"required_if=RelayTarget lambda"`
	SNSTopicARN              string      `env:"SNS_TOPIC_ARN" validate:"required_if=RelayTarget sns"`
	EventBusARN              string      `env:"EVENT_BUS_ARN" validate:"required_if=RelayTarget eventbridge"`

	LogLevel         slog.Level `env:"LOG_LEVEL"`
	MetricsNamespace string     `env:"METRICS_NAMESPACE"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("env")
	})
	return v
}

func Load() (*Config, error) {
	cfg := &Config{}

	region, err := env.GetRequired("AWS_REGION", env.ParseNonEmptyString)
	if err != nil {
		return nil, err
	}
	cfg.AWSRegion = region

	cluster, err := env.GetRequired("CLUSTER_NAME", env.ParseNonEmptyString)
	if err != nil {
		return nil, err
	}
	cfg.ClusterName = cluster

	channel, err := env.GetRequired("SLACK_CHANNEL", env.ParseNonEmptyString)
	if err != nil {
		return nil, err
	}
	cfg.SlackChannel = channel

	target, err := env.GetOptional("RELAY_TARGET", string(TargetLambda), env.OneOf(
		string(TargetLambda),
		string(TargetSNS),
		string(TargetEventBridge),
	))
	if err != nil {
		return nil, fmt.Errorf("invalid relay target: %w", err)
	}
	cfg.RelayTarget = RelayTarget(target)

	cfg.SlackNotificationsLambda = env.Get("SLACK_NOTIFICATIONS_LAMBDA_ARN", "", env.ParseString)
	cfg.SNSTopicARN = env.Get("SNS_TOPIC_ARN", "", env.ParseString)
	cfg.EventBusARN = env.Get("EVENT_BUS_ARN", "", env.ParseString)
	cfg.MetricsNamespace = env.Get("METRICS_NAMESPACE", "", env.ParseString)

	level, err := env.GetOptional("LOG_LEVEL", slog.LevelInfo, env.ParseLogLevel)
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the cross-field requirements of the relay target.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("environment variable %s is required", fe.Field()))
		case "required_if":
			msgs = append(msgs, fmt.Sprintf("environment variable %s is required for relay target %s", fe.Field(), c.RelayTarget))
		default:
			msgs = append(msgs, fmt.Sprintf("environment variable %s failed %s validation", fe.Field(), fe.Tag()))
		}
	}

	return errors.New(strings.Join(msgs, "; "))
}
