package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "session:"

	fieldPrevEmbedding = "prev_embedding"
	fieldPrevEmotion   = "prev_emotion"

	// DefaultTTL evicts sessions idle for this long. Every write
	// refreshes it, so an active session never expires mid-conversation.
	DefaultTTL = 24 * time.Hour
)

// RedisStore implements Store on a Redis hash per session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed session store. redisURL may be a
// redis:// URL or a bare host:port.
func NewRedisStore(redisURL string, ttl time.Duration, logger *slog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		opts = &redis.Options{Addr: redisURL}
	}
	return &RedisStore{
		client: redis.NewClient(opts),
		ttl:    ttl,
		logger: logger,
	}
}

func (s *RedisStore) key(key string) string {
	return keyPrefix + key
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}

func (s *RedisStore) PrevEmbedding(ctx context.Context, key string) ([]float64, bool, error) {
	data, err := s.client.HGet(ctx, s.key(key), fieldPrevEmbedding).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to read prev embedding: %v", ErrStore, err)
	}

	var embedding []float64
	if err := json.Unmarshal([]byte(data), &embedding); err != nil {
		return nil, false, fmt.Errorf("%w: failed to unmarshal prev embedding: %v", ErrStore, err)
	}
	return embedding, true, nil
}

func (s *RedisStore) SetPrevEmbedding(ctx context.Context, key string, embedding []float64) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal embedding: %v", ErrStore, err)
	}
	return s.setField(ctx, key, fieldPrevEmbedding, string(data))
}

func (s *RedisStore) PrevEmotion(ctx context.Context, key string) (string, bool, error) {
	label, err := s.client.HGet(ctx, s.key(key), fieldPrevEmotion).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to read prev emotion: %v", ErrStore, err)
	}
	return label, true, nil
}

func (s *RedisStore) SetPrevEmotion(ctx context.Context, key string, label string) error {
	return s.setField(ctx, key, fieldPrevEmotion, label)
}

// setField writes one hash field and refreshes the session TTL.
func (s *RedisStore) setField(ctx context.Context, key, field, value string) error {
	redisKey := s.key(key)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, redisKey, field, value)
	pipe.Expire(ctx, redisKey, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", ErrStore, field, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: failed to delete session: %v", ErrStore, err)
	}
	return nil
}
