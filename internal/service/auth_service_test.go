package service

import (
	"context"
	"errors"
	"testing"

	"github.com/GTDGit/opsdash/internal/auth"
	"github.com/GTDGit/opsdash/internal/config"
)

func newAuthService(t *testing.T) (*AuthService, *fixture) {
	t.Helper()
	f := newFixture(t)
	s := NewAuthService(f.users)
	s.now = clock
	return s, f
}

func TestAuthServiceLogin(t *testing.T) {
	s, f := newAuthService(t)
	ctx := context.Background()

	active, err := s.CreateUser(ctx, CreateUserRequest{
		Username: "desk", Email: "desk@example.com", Password: "secret-1", Role: "attendant", FullName: "Front Desk",
	})
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	inactive, err := s.CreateUser(ctx, CreateUserRequest{
		Username: "gone", Email: "gone@example.com", Password: "secret-2", Role: "technician", FullName: "Gone",
	})
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if err := f.users.SetActive(ctx, inactive.ID, false); err != nil {
		t.Fatalf("SetActive() error: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid", "desk", "secret-1", nil},
		{"wrong password", "desk", "nope", ErrInvalidCredentials},
		{"unknown user", "ghost", "secret-1", ErrInvalidCredentials},
		{"inactive with right password", "gone", "secret-2", ErrAccountInactive},
		{"inactive with wrong password", "gone", "nope", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := s.Login(ctx, tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (u == nil || u.ID != active.ID) {
				t.Fatalf("Login() user = %+v", u)
			}
		})
	}

	got, err := f.users.GetByID(ctx, active.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(fixedNow) {
		t.Errorf("last_login = %v, want %v", got.LastLogin, fixedNow)
	}
	got, err = f.users.GetByID(ctx, inactive.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.LastLogin != nil {
		t.Errorf("inactive account last_login must stay unset, got %v", got.LastLogin)
	}
}

func TestAuthServiceCreateUserValidation(t *testing.T) {
	s, _ := newAuthService(t)
	ctx := context.Background()

	base := CreateUserRequest{Username: "ops", Email: "ops@example.com", Password: "secret-1", Role: "admin", FullName: "Ops"}
	if _, err := s.CreateUser(ctx, base); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(r *CreateUserRequest)
		wantErr error
	}{
		{"duplicate username", func(r *CreateUserRequest) { r.Email = "other@example.com" }, ErrUsernameExists},
		{"duplicate email", func(r *CreateUserRequest) { r.Username = "other" }, ErrEmailExists},
		{"bad role", func(r *CreateUserRequest) { r.Username = "x"; r.Email = "x@example.com"; r.Role = "root" }, ErrValidation},
		{"short password", func(r *CreateUserRequest) { r.Username = "y"; r.Email = "y@example.com"; r.Password = "12345" }, ErrValidation},
		{"bad email", func(r *CreateUserRequest) { r.Username = "z"; r.Email = "not-an-email" }, ErrValidation},
		{"display name email", func(r *CreateUserRequest) { r.Username = "w"; r.Email = "Desk Person <desk@example.com>" }, ErrValidation},
		{"bracketed email", func(r *CreateUserRequest) { r.Username = "v"; r.Email = "<desk@example.com>" }, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			if _, err := s.CreateUser(ctx, req); !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateUser() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthServiceToggleUser(t *testing.T) {
	s, _ := newAuthService(t)
	ctx := context.Background()

	admin, err := s.CreateUser(ctx, CreateUserRequest{Username: "ops", Email: "ops@example.com", Password: "secret-1", Role: "admin", FullName: "Ops"})
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	tech, err := s.CreateUser(ctx, CreateUserRequest{Username: "5511999990000", Email: "t@example.com", Password: "secret-1", Role: "technician", FullName: "Tech"})
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}

	if _, err := s.ToggleUser(ctx, admin.ID, admin.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("self toggle error = %v, want ErrValidation", err)
	}
	u, err := s.ToggleUser(ctx, admin.ID, tech.ID)
	if err != nil || u.IsActive {
		t.Fatalf("ToggleUser() = %+v, %v; want inactive", u, err)
	}
	u, err = s.ToggleUser(ctx, admin.ID, tech.ID)
	if err != nil || !u.IsActive {
		t.Fatalf("ToggleUser() = %+v, %v; want active", u, err)
	}
	if _, err := s.ToggleUser(ctx, admin.ID, 999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user error = %v, want ErrUserNotFound", err)
	}
}

func TestAuthServiceUpdateProfile(t *testing.T) {
	s, _ := newAuthService(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, CreateUserRequest{Username: "desk", Email: "desk@example.com", Password: "secret-1", Role: "attendant", FullName: "Desk"})
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if _, err := s.CreateUser(ctx, CreateUserRequest{Username: "other", Email: "other@example.com", Password: "secret-1", Role: "attendant", FullName: "Other"}); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}

	if _, err := s.UpdateProfile(ctx, u.ID, UpdateProfileRequest{FullName: "Desk", Email: "other@example.com"}); !errors.Is(err, ErrEmailExists) {
		t.Errorf("taken email error = %v, want ErrEmailExists", err)
	}
	if _, err := s.UpdateProfile(ctx, u.ID, UpdateProfileRequest{FullName: "Desk", Email: "Desk <desk@example.com>"}); !errors.Is(err, ErrValidation) {
		t.Errorf("display name email: error = %v, want ErrValidation", err)
	}
	if _, err := s.UpdateProfile(ctx, u.ID, UpdateProfileRequest{FullName: "Desk", Email: "desk@example.com", Password: "123"}); !errors.Is(err, ErrValidation) {
		t.Errorf("short password error = %v, want ErrValidation", err)
	}

	got, err := s.UpdateProfile(ctx, u.ID, UpdateProfileRequest{FullName: "Front Desk", Email: "front@example.com"})
	if err != nil {
		t.Fatalf("UpdateProfile() error: %v", err)
	}
	if got.FullName != "Front Desk" || got.Email != "front@example.com" {
		t.Fatalf("unexpected profile: %+v", got)
	}
	if _, err := s.Login(ctx, "desk", "secret-1"); err != nil {
		t.Fatalf("password must be unchanged without a new one: %v", err)
	}

	if _, err := s.UpdateProfile(ctx, u.ID, UpdateProfileRequest{FullName: "Front Desk", Email: "front@example.com", Password: "new-secret"}); err != nil {
		t.Fatalf("UpdateProfile() error: %v", err)
	}
	if _, err := s.Login(ctx, "desk", "new-secret"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	s, f := newAuthService(t)
	ctx := context.Background()

	if err := s.EnsureBootstrapAdmin(ctx, config.BootstrapConfig{}); err != nil {
		t.Fatalf("EnsureBootstrapAdmin() without config error: %v", err)
	}
	if n, _ := f.users.CountByRole(ctx, string(auth.RoleAdmin)); n != 0 {
		t.Fatalf("admins = %d, want 0 without bootstrap config", n)
	}

	cfg := config.BootstrapConfig{AdminUsername: "root", AdminEmail: "root@example.com", AdminPassword: "bootstrap-pass"}
	for i := 0; i < 2; i++ {
		if err := s.EnsureBootstrapAdmin(ctx, cfg); err != nil {
			t.Fatalf("EnsureBootstrapAdmin() run %d error: %v", i, err)
		}
	}
	if n, _ := f.users.CountByRole(ctx, string(auth.RoleAdmin)); n != 1 {
		t.Fatalf("admins = %d, want 1", n)
	}
	if _, err := s.Login(ctx, "root", "bootstrap-pass"); err != nil {
		t.Fatalf("bootstrap admin login: %v", err)
	}
}
