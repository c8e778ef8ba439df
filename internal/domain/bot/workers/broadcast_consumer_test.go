package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	kafkaHandlers "github.com/OtabekovsProject/bot-media/internal/domain/bot/delivery/kafka"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/dto"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/usecase/buissines"
)

type fakeReader struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type countingRunner struct {
	mu    sync.Mutex
	texts []string
}

func (c *countingRunner) Run(_ context.Context, _ int64, content buissines.Content) (dto.BroadcastReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tc, ok := content.(buissines.TextContent); ok {
		c.texts = append(c.texts, tc.Text)
	}
	return dto.BroadcastReport{Total: 1, Delivered: 1}, nil
}

func TestBroadcastConsumer_HandlesAndCommits(t *testing.T) {
	reader := &fakeReader{msgs: make(chan kafka.Message, 2)}
	runner := &countingRunner{}
	handlers := kafkaHandlers.NewHandlersWith(runner, nil, zerolog.Nop())

	c := newBroadcastConsumer(reader, handlers, zerolog.Nop())
	c.Start()

	reader.msgs <- kafka.Message{Offset: 1, Value: []byte(`{"id":"a","text":"salom"}`)}
	// malformed requests are committed too
	reader.msgs <- kafka.Message{Offset: 2, Value: []byte(`oops`)}

	require.Eventually(t, func() bool { return len(reader.commits()) == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Stop())

	require.Equal(t, []int64{1, 2}, reader.commits())
	require.Equal(t, []string{"salom"}, runner.texts)
	require.True(t, reader.closed)
}
