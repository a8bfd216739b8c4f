package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rcliao/lorebook/internal/model"
)

// RedisSource keeps each chat as a Redis list of JSON messages.
type RedisSource struct {
	client *redis.Client
	prefix string
}

// NewRedisSource connects to redisURL and checks the connection.
func NewRedisSource(ctx context.Context, redisURL string) (*RedisSource, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisSource{client: client, prefix: "lorebook:chat:"}, nil
}

func (r *RedisSource) key(chat string) string {
	return r.prefix + chat
}

func (r *RedisSource) Append(ctx context.Context, chat string, m model.Message) error {
	if m.ID == "" {
		m.ID = ulid.Make().String()
	}
	if m.SendDate.IsZero() {
		m.SendDate = time.Now().UTC()
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return r.client.RPush(ctx, r.key(chat), data).Err()
}

func (r *RedisSource) Recent(ctx context.Context, chat string, n int) ([]model.Message, error) {
	if n <= 0 {
		return []model.Message{}, nil
	}
	items, err := r.client.LRange(ctx, r.key(chat), int64(-n), -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.Message{}, nil
		}
		return nil, fmt.Errorf("load history: %w", err)
	}

	msgs := make([]model.Message, 0, len(items))
	for _, item := range items {
		var m model.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (r *RedisSource) Clear(ctx context.Context, chat string) error {
	return r.client.Del(ctx, r.key(chat)).Err()
}

// Close closes the Redis client.
func (r *RedisSource) Close() error {
	return r.client.Close()
}
