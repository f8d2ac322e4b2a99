package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GTDGit/opsdash/internal/auth"
)

// CookieStore keeps no server state: the token itself is an HS256-signed JWT
// holding the session. Delete only works client side by clearing the cookie,
// so a copied token stays valid until it expires.
type CookieStore struct {
	secret   []byte
	lifetime time.Duration
}

type sessionClaims struct {
	Username string    `json:"username"`
	FullName string    `json:"full_name,omitempty"`
	Role     auth.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewCookieStore creates a stateless store signing with secret.
func NewCookieStore(secret string, lifetime time.Duration) (*CookieStore, error) {
	if len(secret) < 32 {
		return nil, errors.New("session secret must be at least 32 characters")
	}
	return &CookieStore{secret: []byte(secret), lifetime: lifetime}, nil
}

func (s *CookieStore) Create(_ context.Context, sess auth.Session) (string, error) {
	sess = stamp(sess, s.lifetime)

	claims := sessionClaims{
		Username: sess.Username,
		FullName: sess.FullName,
		Role:     sess.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(sess.UserID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return token, nil
}

func (s *CookieStore) Get(_ context.Context, token string) (*auth.Session, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrSessionNotFound
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	sess := &auth.Session{
		UserID:   userID,
		Username: claims.Username,
		FullName: claims.FullName,
		Role:     claims.Role,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// Delete is a no-op; the handler clears the cookie.
func (s *CookieStore) Delete(context.Context, string) error {
	return nil
}
