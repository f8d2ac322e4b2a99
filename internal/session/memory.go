package session

import (
	"context"
	"sync"
	"time"

	"github.com/GTDGit/opsdash/internal/auth"
)

const sweepEvery = 5 * time.Minute

// MemoryStore keeps sessions in process memory. Sessions do not survive a
// restart and are not shared between instances. Expired sessions are swept
// lazily from Create and Get.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]auth.Session
	lifetime  time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(lifetime time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]auth.Session),
		lifetime: lifetime,
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, sess auth.Session) (string, error) {
	token, err := generateToken(32)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = now.UTC().Add(s.lifetime)
	}
	s.sweep(now)
	s.sessions[token] = sess
	return token, nil
}

// Get returns the session for token. Expired entries are dropped on access.
func (s *MemoryStore) Get(_ context.Context, token string) (*auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	defer s.sweep(now)

	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.Expired(now) {
		delete(s.sessions, token)
		return nil, ErrSessionExpired
	}
	return &sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweep drops expired sessions at most once per sweepEvery. Callers hold mu.
func (s *MemoryStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepEvery {
		return
	}
	s.lastSweep = now
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
		}
	}
}
