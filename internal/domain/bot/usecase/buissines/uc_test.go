package buissines

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/dto"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

func TestUseCase_HandleStartUpsertsUser(t *testing.T) {
	var upserted []*entities.User
	seen := map[int64]bool{}
	users := &mockUserRepo{
		upsertFn: func(_ context.Context, u *entities.User) (bool, error) {
			upserted = append(upserted, u)
			created := !seen[u.TelegramID]
			seen[u.TelegramID] = true
			return created, nil
		},
	}
	pub := &mockPublisher{}
	uc := NewUseCase(users, pub, zerolog.Nop())

	req := &dto.StartCommandRequest{UserID: 42, FullName: "Ann <b>", Username: "ann"}
	resp, err := uc.HandleStart(context.Background(), req)
	require.NoError(t, err)
	require.True(t, strings.Contains(resp.Message, "Ann &lt;b&gt;"), "name must be escaped")

	_, err = uc.HandleStart(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, upserted, 2)
	require.Equal(t, int64(42), upserted[0].TelegramID)
	require.Equal(t, "ann", upserted[0].Username)
	require.Equal(t, []string{dto.EventUserRegistered}, pub.types(), "only the first start registers")
}

func TestUseCase_HandleStartStorageFailure(t *testing.T) {
	users := &mockUserRepo{
		upsertFn: func(context.Context, *entities.User) (bool, error) { return false, errBoom },
	}
	uc := NewUseCase(users, nil, zerolog.Nop())

	_, err := uc.HandleStart(context.Background(), &dto.StartCommandRequest{UserID: 1})
	require.ErrorIs(t, err, errBoom)
}

func TestUseCase_HandleHelp(t *testing.T) {
	uc := NewUseCase(&mockUserRepo{}, nil, zerolog.Nop())
	resp, err := uc.HandleHelp(context.Background())
	require.NoError(t, err)
	require.Contains(t, resp.Message, "/start")
}
