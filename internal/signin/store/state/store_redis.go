package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"teacherid/internal/signin/models"
	id "teacherid/pkg/domain"
	"teacherid/pkg/platform/sentinel"
)

const journeyKeyPrefix = "signin:journey:"

// RedisStore keeps journeys as JSON values with a sliding TTL. Saves run
// inside WATCH so a concurrent write aborts the transaction.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func journeyKey(journeyID id.JourneyID) string {
	return journeyKeyPrefix + journeyID.String()
}

// Load returns sentinel.ErrNotFound for missing keys. Redis drops expired
// keys itself, so it never reports sentinel.ErrExpired.
func (s *RedisStore) Load(ctx context.Context, journeyID id.JourneyID) (models.AuthenticationState, error) {
	return get(ctx, s.client, journeyKey(journeyID))
}

func (s *RedisStore) Save(ctx context.Context, st models.AuthenticationState) (models.AuthenticationState, error) {
	key := journeyKey(st.JourneyID)
	var saved models.AuthenticationState

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := get(ctx, tx, key)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			current = models.AuthenticationState{}
		case err != nil:
			return err
		}
		if current.Version != st.Version {
			return sentinel.ErrStaleVersion
		}

		next := st
		next.Version++
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal journey state: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		saved = next
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return models.AuthenticationState{}, sentinel.ErrStaleVersion
	}
	if err != nil {
		return models.AuthenticationState{}, err
	}
	return saved, nil
}

func get(ctx context.Context, c redis.Cmdable, key string) (models.AuthenticationState, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.AuthenticationState{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.AuthenticationState{}, fmt.Errorf("get journey state: %w", err)
	}
	var st models.AuthenticationState
	if err := json.Unmarshal(data, &st); err != nil {
		return models.AuthenticationState{}, fmt.Errorf("unmarshal journey state: %w", err)
	}
	return st, nil
}
