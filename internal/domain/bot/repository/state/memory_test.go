package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

func TestMemoryStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	conv, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.False(t, conv.Active())

	data := map[string]string{"k": "v"}
	require.NoError(t, s.Set(ctx, 1, entities.Conversation{State: entities.StateAwaitingChannelLink, Data: data}))

	// the store must not alias caller maps
	data["k"] = "changed"

	conv, err = s.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, entities.StateAwaitingChannelLink, conv.State)
	require.Equal(t, "v", conv.Data["k"])

	require.NoError(t, s.Clear(ctx, 1))
	conv, err = s.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, entities.StateNone, conv.State)
}

func TestMemoryStore_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	require.NoError(t, s.Set(ctx, 7, entities.Conversation{State: entities.StateAwaitingAdminGrantID}))

	ok, err := s.CompareAndSwap(ctx, 7, entities.StateAwaitingChannelLink, entities.StateNone)
	require.NoError(t, err)
	require.False(t, ok, "swap from a state the user is not in must fail")

	ok, err = s.CompareAndSwap(ctx, 7, entities.StateAwaitingAdminGrantID, entities.StateNone)
	require.NoError(t, err)
	require.True(t, ok)

	conv, _ := s.Get(ctx, 7)
	require.Equal(t, entities.StateNone, conv.State)
}

func TestMemoryStore_ConcurrentCompleteSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	require.NoError(t, s.Set(ctx, 3, entities.Conversation{State: entities.StateAwaitingBroadcastContent}))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.CompareAndSwap(ctx, 3, entities.StateAwaitingBroadcastContent, entities.StateNone)
			if err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}

func TestMemoryStore_TTLExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, 5, entities.Conversation{State: entities.StateAwaitingChannelLink, UpdatedAt: now}))

	now = now.Add(2 * time.Minute)
	conv, err := s.Get(ctx, 5)
	require.NoError(t, err)
	require.False(t, conv.Active())
}
