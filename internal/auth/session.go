// internal/auth/session.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:generate mockgen -source=./session.go -destination=../mocks/mock_session_store.go -package=mocks SessionStore

const (
	revokedKeyPrefix = "session:revoked:"
	rotatedKeyPrefix = "session:rotated:"
)

// SessionStore remembers revoked token ids until the tokens would have
// expired anyway, and the pair a refresh token was rotated into.
type SessionStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// ClaimRotation records next as the successor of the refresh token jti for
	// window and revokes jti for ttl. When another request rotated jti first,
	// its pair is returned instead of next.
	ClaimRotation(ctx context.Context, jti string, next *TokenPair, window, ttl time.Duration) (*TokenPair, error)
	// Rotated returns the successor recorded for jti, or nil.
	Rotated(ctx context.Context, jti string) (*TokenPair, error)
}

// NewRedisClient connects to redis and checks the connection.
func NewRedisClient(url, password string, db int) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if password != "" {
		opts.Password = password
	}
	if db > 0 {
		opts.DB = db
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Revoke blocks jti for ttl and drops any successor recorded for it. A token
// that has already expired needs no entry.
func (s *RedisSessionStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, revokedKeyPrefix+jti, 1, ttl)
		pipe.Del(ctx, rotatedKeyPrefix+jti)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis revoke failed: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) ClaimRotation(ctx context.Context, jti string, next *TokenPair, window, ttl time.Duration) (*TokenPair, error) {
	raw, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encoding token pair: %w", err)
	}

	won, err := s.client.SetNX(ctx, rotatedKeyPrefix+jti, raw, window).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx failed: %w", err)
	}
	if !won {
		existing, err := s.Rotated(ctx, jti)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	if ttl > 0 {
		if err := s.client.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err(); err != nil {
			return nil, fmt.Errorf("redis set failed: %w", err)
		}
	}
	return next, nil
}

func (s *RedisSessionStore) Rotated(ctx context.Context, jti string) (*TokenPair, error) {
	raw, err := s.client.Get(ctx, rotatedKeyPrefix+jti).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var pair TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil, fmt.Errorf("decoding token pair: %w", err)
	}
	return &pair, nil
}

func (s *RedisSessionStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}
