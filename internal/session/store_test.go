package session

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/GTDGit/opsdash/internal/auth"
	"github.com/GTDGit/opsdash/internal/cache"
	"github.com/GTDGit/opsdash/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func sampleSession() auth.Session {
	return auth.Session{UserID: 7, Username: "desk", FullName: "Front Desk", Role: auth.RoleAttendant}
}

// exerciseStore runs the behaviour every store must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	token, err := store.Create(ctx, sampleSession())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	got, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.UserID != 7 || got.Username != "desk" || got.Role != auth.RoleAttendant {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.ExpiresAt.IsZero() {
		t.Fatal("expected expiry to be stamped")
	}

	if _, err := store.Get(ctx, "not-a-token"); err == nil {
		t.Fatal("expected error for unknown token")
	}

	if err := store.Delete(ctx, token); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	exerciseStore(t, store)
}

func TestMemoryStoreDeleteInvalidates(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, sampleSession())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := store.Delete(ctx, token); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := store.Get(ctx, token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess := sampleSession()
	sess.ExpiresAt = now.Add(time.Minute)
	token, err := store.Create(context.Background(), sess)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(context.Background(), token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if _, err := store.Get(context.Background(), token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired session should be dropped, got %v", err)
	}
}

func TestMemoryStoreSweepsAbandonedSessions(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		if _, err := store.Create(ctx, sampleSession()); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}
	if got := store.Len(); got != 1000 {
		t.Fatalf("Len() = %d, want 1000", got)
	}

	now = now.Add(time.Hour)
	token, err := store.Create(ctx, sampleSession())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if got := store.Len(); got != 1 {
		t.Fatalf("Len() after sweep = %d, want 1", got)
	}
	if _, err := store.Get(ctx, token); err != nil {
		t.Fatalf("fresh session lost in sweep: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "not-a-token"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	now = now.Add(sweepEvery)
	if _, err := store.Get(ctx, "not-a-token"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if got := store.Len(); got != 0 {
		t.Fatalf("Len() after Get sweep = %d, want 0", got)
	}
}

func TestCookieStore(t *testing.T) {
	store, err := NewCookieStore(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewCookieStore() error: %v", err)
	}
	exerciseStore(t, store)
}

func TestCookieStoreRejectsTampering(t *testing.T) {
	store, err := NewCookieStore(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewCookieStore() error: %v", err)
	}
	token, err := store.Create(context.Background(), sampleSession())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	other, err := NewCookieStore(strings.Repeat("x", 32), time.Hour)
	if err != nil {
		t.Fatalf("NewCookieStore() error: %v", err)
	}
	if _, err := other.Get(context.Background(), token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("token signed with another secret must be rejected, got %v", err)
	}
}

func TestCookieStoreExpired(t *testing.T) {
	store, err := NewCookieStore(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewCookieStore() error: %v", err)
	}
	sess := sampleSession()
	sess.ExpiresAt = time.Now().Add(-time.Minute)

	token, err := store.Create(context.Background(), sess)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := store.Get(context.Background(), token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestNewSelectsStore(t *testing.T) {
	s, err := New(config.SessionConfig{Store: config.SessionStoreMemory, Lifetime: time.Hour}, nil)
	if err != nil {
		t.Fatalf("New(memory) error: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("expected *MemoryStore, got %T", s)
	}

	s, err = New(config.SessionConfig{Store: config.SessionStoreCookie, Secret: testSecret, Lifetime: time.Hour}, nil)
	if err != nil {
		t.Fatalf("New(cookie) error: %v", err)
	}
	if _, ok := s.(*CookieStore); !ok {
		t.Fatalf("expected *CookieStore, got %T", s)
	}

	if _, err := New(config.SessionConfig{Store: config.SessionStoreRedis}, nil); err == nil {
		t.Fatal("redis store without client must fail")
	}
	if _, err := New(config.SessionConfig{Store: "file"}, nil); err == nil {
		t.Fatal("unknown store must fail")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis session tests")
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("invalid TEST_REDIS_ADDR: %v", err)
	}

	client, err := cache.NewRedisClient(&config.RedisConfig{Host: host, Port: port})
	if err != nil {
		t.Fatalf("NewRedisClient() error: %v", err)
	}
	defer client.Close()

	store := NewRedisStore(client, time.Minute)
	exerciseStore(t, store)
}
