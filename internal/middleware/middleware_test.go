package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/opsdash/internal/auth"
	"github.com/GTDGit/opsdash/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, session.Store) {
	t.Helper()
	store := session.NewMemoryStore(time.Hour)
	m := NewSessionMiddleware(store, time.Hour, false)

	r := gin.New()
	protected := r.Group("/", m.Handle())
	protected.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, GetSession(c).Username)
	})
	protected.GET("/clients", RequirePermission(auth.PermViewClients, auth.PermViewAll), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	protected.GET("/users", RequirePermission(auth.PermManageUsers), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, store
}

func TestSessionMiddleware(t *testing.T) {
	r, store := newRouter(t)
	token, err := store.Create(context.Background(), auth.Session{UserID: 7, Username: "desk", Role: auth.RoleAttendant})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		cookie     string
		wantStatus int
	}{
		{"no cookie", "/me", "", http.StatusUnauthorized},
		{"unknown token", "/me", "deadbeef", http.StatusUnauthorized},
		{"valid session", "/me", token, http.StatusOK},
		{"attendant on clients", "/clients", token, http.StatusOK},
		{"attendant on users", "/users", token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRequirePermissionTechnician(t *testing.T) {
	r, store := newRouter(t)
	token, _ := store.Create(context.Background(), auth.Session{UserID: 9, Username: "5511911111111", Role: auth.RoleTechnician})

	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("technician on clients: status = %d, want 403", w.Code)
	}
}

func TestInvalidAuthRateLimiter(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	rl := NewInvalidAuthRateLimiter()
	rl.now = func() time.Time { return now }

	for i := 0; i < maxInvalidAttempts; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("attempt %d rejected", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("attempt beyond the limit allowed")
	}
	if !rl.Blocked("10.0.0.1") || rl.Blocked("10.0.0.2") {
		t.Fatal("unexpected blocked state")
	}

	now = now.Add(attemptWindow + time.Second)
	if rl.Blocked("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("window should have reset")
	}

	now = now.Add(cleanupEvery + time.Minute)
	rl.Allow("10.0.0.3")
	if _, ok := rl.attempts["10.0.0.1"]; ok {
		t.Error("stale entry not swept")
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"ops.example.com", "localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin string
		want   string
	}{
		{"https://ops.example.com", "https://ops.example.com"},
		{"https://ops.example.com:443", "https://ops.example.com:443"},
		{"http://localhost:3000", "http://localhost:3000"},
		{"https://evil.example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("allow origin = %q, want %q", got, tt.want)
			}
		})
	}

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
}
