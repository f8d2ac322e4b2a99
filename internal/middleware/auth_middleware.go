package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/opsdash/internal/auth"
	"github.com/GTDGit/opsdash/internal/session"
	"github.com/GTDGit/opsdash/internal/utils"
)

const sessionKey = "session"

// SessionMiddleware resolves the session cookie into an auth.Session.
type SessionMiddleware struct {
	store    session.Store
	lifetime time.Duration
	secure   bool
}

// NewSessionMiddleware constructs a SessionMiddleware. secure marks the
// cookie as HTTPS only.
func NewSessionMiddleware(store session.Store, lifetime time.Duration, secure bool) *SessionMiddleware {
	if lifetime <= 0 {
		lifetime = session.DefaultLifetime
	}
	return &SessionMiddleware{store: store, lifetime: lifetime, secure: secure}
}

// Handle returns a Gin middleware that rejects requests without a valid
// session with 401.
func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.CookieName)
		if err != nil || token == "" {
			utils.Error(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Please log in to access this page")
			c.Abort()
			return
		}

		sess, err := m.store.Get(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrSessionNotFound) && !errors.Is(err, session.ErrSessionExpired) {
				log.Error().Err(err).Msg("Failed to load session")
			}
			m.ClearCookie(c)
			utils.Error(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Please log in to access this page")
			c.Abort()
			return
		}

		c.Set(sessionKey, sess)
		c.Set("session_token", token)
		c.Set("user_id", sess.UserID)
		c.Next()
	}
}

// SetCookie writes the session token cookie.
func (m *SessionMiddleware) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, int(m.lifetime.Seconds()), "/", "", m.secure, true)
}

// ClearCookie expires the session token cookie.
func (m *SessionMiddleware) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", m.secure, true)
}

// Store returns the backing session store.
func (m *SessionMiddleware) Store() session.Store {
	return m.store
}

// RequirePermission lets a request through when the session holds at least
// one of perms.
func RequirePermission(perms ...auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil {
			utils.Error(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Please log in to access this page")
			c.Abort()
			return
		}
		if !auth.AuthorizeAny(sess, perms...) {
			log.Warn().Str("username", sess.Username).Str("role", string(sess.Role)).
				Str("path", c.FullPath()).Msg("Permission denied")
			utils.Error(c, http.StatusForbidden, "PERMISSION_DENIED", "You do not have permission to access this page")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSession returns the authenticated session from context, or nil.
func GetSession(c *gin.Context) *auth.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*auth.Session)
	return sess
}

// GetSessionToken returns the raw session token of the request.
func GetSessionToken(c *gin.Context) string {
	return c.GetString("session_token")
}
