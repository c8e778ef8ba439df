package buissines

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

// StateMachine owns the per-user conversation state of admin flows
type StateMachine struct {
	store  deps.StateStore
	logger zerolog.Logger
}

// NewStateMachine creates a new StateMachine
func NewStateMachine(store deps.StateStore, logger zerolog.Logger) *StateMachine {
	return &StateMachine{
		store:  store,
		logger: logger.With().Str("component", "fsm").Logger(),
	}
}

// Current returns the user's conversation, StateNone when idle
func (m *StateMachine) Current(ctx context.Context, userID int64) (entities.Conversation, error) {
	conv, err := m.store.Get(ctx, userID)
	if err != nil {
		return entities.Conversation{}, fmt.Errorf("get state for %d: %w", userID, err)
	}
	return conv, nil
}

// Enter puts the user into state, discarding any previous state and its data
func (m *StateMachine) Enter(ctx context.Context, userID int64, state entities.State, data map[string]string) error {
	if !state.Valid() {
		return fmt.Errorf("unknown state %q", state)
	}
	if state == entities.StateNone {
		return m.Reset(ctx, userID)
	}

	conv := entities.Conversation{
		State:     state,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	if err := m.store.Set(ctx, userID, conv); err != nil {
		return fmt.Errorf("enter %s for %d: %w", state, userID, err)
	}

	m.logger.Debug().Int64("user_id", userID).Str("state", string(state)).Msg("Conversation state entered")
	return nil
}

// Reset returns the user to StateNone unconditionally
func (m *StateMachine) Reset(ctx context.Context, userID int64) error {
	if err := m.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("reset state for %d: %w", userID, err)
	}
	return nil
}

// Complete finishes the flow only if the user is still in expected.
// It returns false when another flow replaced the state meanwhile.
func (m *StateMachine) Complete(ctx context.Context, userID int64, expected entities.State) (bool, error) {
	ok, err := m.store.CompareAndSwap(ctx, userID, expected, entities.StateNone)
	if err != nil {
		return false, fmt.Errorf("complete %s for %d: %w", expected, userID, err)
	}
	if !ok {
		m.logger.Debug().Int64("user_id", userID).Str("expected", string(expected)).Msg("Conversation state changed before completion")
	}
	return ok, nil
}
