package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

const (
	keyPrefix = "conversation:"
	// casRetries bounds optimistic retries when the key changes under WATCH
	casRetries = 5
)

// RedisStore keeps conversations in Redis so they survive restarts
// and are shared between replicas
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new RedisStore; ttl <= 0 keeps keys forever
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, ttl: ttl}
}

func conversationKey(userID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

// Get implements deps.StateStore
func (s *RedisStore) Get(ctx context.Context, userID int64) (entities.Conversation, error) {
	return read(ctx, s.client, conversationKey(userID))
}

// Set implements deps.StateStore
func (s *RedisStore) Set(ctx context.Context, userID int64, conv entities.Conversation) error {
	key := conversationKey(userID)
	if !conv.Active() {
		return s.client.Del(ctx, key).Err()
	}

	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// Clear implements deps.StateStore
func (s *RedisStore) Clear(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, conversationKey(userID)).Err()
}

// CompareAndSwap implements deps.StateStore using WATCH/MULTI
func (s *RedisStore) CompareAndSwap(ctx context.Context, userID int64, expected, next entities.State) (bool, error) {
	key := conversationKey(userID)

	for range casRetries {
		swapped := false

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			conv, err := read(ctx, tx, key)
			if err != nil {
				return err
			}
			if conv.State != expected {
				return nil
			}

			var data []byte
			if next != entities.StateNone {
				conv.State = next
				conv.UpdatedAt = time.Now().UTC()
				if data, err = json.Marshal(conv); err != nil {
					return fmt.Errorf("marshal conversation: %w", err)
				}
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if data == nil {
					pipe.Del(ctx, key)
				} else {
					pipe.Set(ctx, key, data, s.ttl)
				}
				return nil
			})
			if err == nil {
				swapped = true
			}
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, err
		}
		return swapped, nil
	}

	return false, nil
}

func read(ctx context.Context, c redis.Cmdable, key string) (entities.Conversation, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return entities.Conversation{}, nil
	}
	if err != nil {
		return entities.Conversation{}, err
	}

	var conv entities.Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return entities.Conversation{}, fmt.Errorf("unmarshal conversation %s: %w", key, err)
	}
	return conv, nil
}
