package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ab0utbla-k/ecs-deployment-notifier/internal/dispatch"
)

// SenderMock is a mock implementation of the dispatch.Sender interface.
type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) Send(ctx context.Context, payload *dispatch.Payload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// RecorderMock is a mock implementation of the metrics.Recorder interface.
type RecorderMock struct {
	mock.Mock
}

func (m *RecorderMock) Record(ctx context.Context, eventName string, sent, skipped int) error {
	args := m.Called(ctx, eventName, sent, skipped)
	return args.Error(0)
}
