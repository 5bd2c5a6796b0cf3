package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisStore) LoadSession(ctx context.Context, key string) (*domain.PersistedSession, error) {
	data, err := r.client.Get(ctx, sessionKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session failed: %w", err)
	}

	var session domain.PersistedSession
	if errUnmarshal := json.Unmarshal(data, &session); errUnmarshal != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", errUnmarshal)
	}
	return &session, nil
}

func (r *RedisStore) SaveSession(ctx context.Context, key string, session *domain.PersistedSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if errSet := r.client.Set(ctx, sessionKey(key), data, r.ttl).Err(); errSet != nil {
		return fmt.Errorf("redis set session failed: %w", errSet)
	}
	return nil
}

func (r *RedisStore) ClearSession(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, sessionKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete session failed: %w", err)
	}
	return nil
}

func (r *RedisStore) LoadToken(ctx context.Context, key string) (string, error) {
	token, err := r.client.Get(ctx, tokenKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get token failed: %w", err)
	}
	return token, nil
}

func (r *RedisStore) SaveToken(ctx context.Context, key, token string) error {
	if err := r.client.Set(ctx, tokenKey(key), token, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set token failed: %w", err)
	}
	return nil
}

func (r *RedisStore) ClearToken(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, tokenKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete token failed: %w", err)
	}
	return nil
}

func sessionKey(key string) string {
	return fmt.Sprintf("storefront:session:%s", key)
}

func tokenKey(key string) string {
	return fmt.Sprintf("storefront:token:%s", key)
}
