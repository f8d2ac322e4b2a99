package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GTDGit/opsdash/internal/auth"
	"github.com/GTDGit/opsdash/internal/cache"
)

// RedisStore shares sessions between dashboard instances through Redis.
// Entries expire with the session lifetime.
type RedisStore struct {
	redis    *cache.RedisClient
	lifetime time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redis *cache.RedisClient, lifetime time.Duration) *RedisStore {
	return &RedisStore{redis: redis, lifetime: lifetime}
}

func (s *RedisStore) key(token string) string {
	return fmt.Sprintf("opsdash:session:%s", token)
}

func (s *RedisStore) Create(ctx context.Context, sess auth.Session) (string, error) {
	token, err := generateToken(32)
	if err != nil {
		return "", err
	}

	sess = stamp(sess, s.lifetime)
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return "", ErrSessionExpired
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(token), string(data), ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*auth.Session, error) {
	raw, err := s.redis.Get(ctx, s.key(token))
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess auth.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if sess.Expired(time.Now()) {
		_ = s.redis.Delete(ctx, s.key(token))
		return nil, ErrSessionExpired
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.redis.Delete(ctx, s.key(token))
}
