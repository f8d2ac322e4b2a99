package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/GTDGit/opsdash/internal/auth"
	"github.com/GTDGit/opsdash/internal/cache"
	"github.com/GTDGit/opsdash/internal/config"
)

// CookieName is the cookie carrying the session token.
const CookieName = "opsdash_session"

const DefaultLifetime = 12 * time.Hour

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Store persists authenticated sessions keyed by an opaque token.
type Store interface {
	Create(ctx context.Context, sess auth.Session) (string, error)
	Get(ctx context.Context, token string) (*auth.Session, error)
	Delete(ctx context.Context, token string) error
}

// New builds the store selected by cfg.Store. redis may be nil unless the
// redis store is selected.
func New(cfg config.SessionConfig, redis *cache.RedisClient) (Store, error) {
	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}

	switch cfg.Store {
	case config.SessionStoreMemory, "":
		return NewMemoryStore(lifetime), nil
	case config.SessionStoreRedis:
		if redis == nil {
			return nil, errors.New("redis session store requires a redis client")
		}
		return NewRedisStore(redis, lifetime), nil
	case config.SessionStoreCookie:
		return NewCookieStore(cfg.Secret, lifetime)
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.Store)
	}
}

// stamp fills the expiry of sess from lifetime when the caller left it unset.
func stamp(sess auth.Session, lifetime time.Duration) auth.Session {
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = time.Now().UTC().Add(lifetime)
	}
	return sess
}

func generateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
