package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/dto"
	boterrors "github.com/OtabekovsProject/bot-media/internal/domain/bot/errors"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/usecase/buissines"
)

type mockRunner struct {
	runFn   func(ctx context.Context, actorID int64, content buissines.Content) (dto.BroadcastReport, error)
	actor   int64
	content buissines.Content
	calls   int
}

func (m *mockRunner) Run(ctx context.Context, actorID int64, content buissines.Content) (dto.BroadcastReport, error) {
	m.calls++
	m.actor = actorID
	m.content = content
	if m.runFn != nil {
		return m.runFn(ctx, actorID, content)
	}
	return dto.BroadcastReport{}, nil
}

func TestHandleBroadcastRequest(t *testing.T) {
	runner := &mockRunner{runFn: func(context.Context, int64, buissines.Content) (dto.BroadcastReport, error) {
		return dto.BroadcastReport{Total: 3, Delivered: 2}, nil
	}}
	h := NewHandlersWith(runner, nil, zerolog.Nop())

	err := h.HandleBroadcastRequest(context.Background(), []byte(`{"id":"r1","text":"Yangi funksiya!","requested_by":100}`))
	require.NoError(t, err)
	require.Equal(t, 1, runner.calls)
	require.Equal(t, int64(100), runner.actor)
	require.Equal(t, buissines.TextContent{Text: "Yangi funksiya!"}, runner.content)
}

func TestHandleBroadcastRequest_Invalid(t *testing.T) {
	runner := &mockRunner{}
	h := NewHandlersWith(runner, nil, zerolog.Nop())

	require.Error(t, h.HandleBroadcastRequest(context.Background(), []byte(`{not json`)))

	err := h.HandleBroadcastRequest(context.Background(), []byte(`{"id":"r2","text":"  "}`))
	require.ErrorIs(t, err, boterrors.ErrEmptyMessage)
	require.Zero(t, runner.calls)
}

func TestHandleBroadcastRequest_RunError(t *testing.T) {
	boom := errors.New("db down")
	runner := &mockRunner{runFn: func(context.Context, int64, buissines.Content) (dto.BroadcastReport, error) {
		return dto.BroadcastReport{}, boom
	}}
	h := NewHandlersWith(runner, nil, zerolog.Nop())

	err := h.HandleBroadcastRequest(context.Background(), []byte(`{"id":"r3","text":"hi"}`))
	require.ErrorIs(t, err, boom)
}
