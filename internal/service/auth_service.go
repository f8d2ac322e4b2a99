package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/opsdash/internal/auth"
	"github.com/GTDGit/opsdash/internal/config"
	"github.com/GTDGit/opsdash/internal/metrics"
	"github.com/GTDGit/opsdash/internal/models"
	"github.com/GTDGit/opsdash/internal/repository"
)

// MinPasswordLength is the shortest password accepted for new or changed
// passwords.
const MinPasswordLength = 6

var validate = validator.New()

// validEmail accepts a bare address only; display-name forms are rejected.
func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// AuthService handles dashboard logins and account management.
type AuthService struct {
	userRepo *repository.UserRepository
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService constructs an AuthService.
func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo, now: time.Now}
}

// Login verifies credentials. Unknown usernames and wrong passwords both
// yield ErrInvalidCredentials; a correct password on a disabled account
// yields ErrAccountInactive. last_login is only written on success.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	log.Debug().Str("username", username).Msg("Login attempt")

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Spend the same bcrypt work as a real check.
			auth.VerifyPassword(s.dummy(), password)
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			log.Warn().Str("username", username).Msg("Login failed")
			return nil, ErrInvalidCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("username", username).Msg("Failed to get user by username")
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		log.Warn().Str("username", username).Msg("Login failed")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		metrics.LoginAttemptsTotal.WithLabelValues("inactive").Inc()
		log.Warn().Str("username", username).Msg("Account is inactive")
		return nil, ErrAccountInactive
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Error().Err(err).Int("user_id", user.ID).Msg("Failed to update last login")
	} else {
		user.LastLogin = &now
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	log.Info().Str("username", username).Str("role", user.Role).Msg("Login successful")
	return user, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("opsdash-timing-equalizer")
	})
	return s.dummyHash
}

// NewSession builds the session state for an authenticated user.
func NewSession(u *models.User) auth.Session {
	return auth.Session{
		UserID:   u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Role:     auth.Role(u.Role),
	}
}

// EnsureBootstrapAdmin creates the configured first administrator when no
// administrator exists yet. Without configured credentials it only warns.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	admins, err := s.userRepo.CountByRole(ctx, string(auth.RoleAdmin))
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}

	if !cfg.Enabled() {
		log.Warn().Msg("No administrator exists and BOOTSTRAP_ADMIN_* is not set; nobody can log in until one is created")
		return nil
	}

	u, err := s.CreateUser(ctx, CreateUserRequest{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     string(auth.RoleAdmin),
		FullName: "Administrator",
	})
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	log.Info().Str("username", u.Username).Msg("Bootstrap administrator created")
	return nil
}

// CreateUserRequest represents the request to create a dashboard account.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

// CreateUser validates and stores a new active account.
func (s *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	switch {
	case req.Username == "":
		return nil, validationError("username is required")
	case req.FullName == "":
		return nil, validationError("full_name is required")
	case !auth.ValidRole(req.Role):
		return nil, validationError("role must be admin, attendant or technician")
	case len(req.Password) < MinPasswordLength:
		return nil, validationError("password must have at least %d characters", MinPasswordLength)
	}
	if !validEmail(req.Email) {
		return nil, validationError("email is invalid")
	}

	taken, err := s.userRepo.UsernameTaken(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameExists
	}
	taken, err = s.userRepo.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		FullName:     req.FullName,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns every dashboard account.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// GetUser returns one account.
func (s *AuthService) GetUser(ctx context.Context, id int) (*models.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ToggleUser flips the active flag of an account. Operators cannot disable
// their own account.
func (s *AuthService) ToggleUser(ctx context.Context, actorID, id int) (*models.User, error) {
	if actorID == id {
		return nil, validationError("you cannot disable your own account")
	}
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetActive(ctx, id, !u.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.IsActive = !u.IsActive
	log.Info().Int("user_id", id).Bool("is_active", u.IsActive).Int("by", actorID).Msg("User active flag changed")
	return u, nil
}

// UpdateProfileRequest represents a change to the caller's own profile.
// Password is only changed when non-empty.
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

// UpdateProfile changes the name, email and optionally the password of id.
func (s *AuthService) UpdateProfile(ctx context.Context, id int, req UpdateProfileRequest) (*models.User, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" {
		return nil, validationError("full_name is required")
	}
	if !validEmail(req.Email) {
		return nil, validationError("email is invalid")
	}

	var hash *string
	if req.Password != "" {
		if len(req.Password) < MinPasswordLength {
			return nil, validationError("password must have at least %d characters", MinPasswordLength)
		}
		h, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}

	taken, err := s.userRepo.EmailTaken(ctx, req.Email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	if err := s.userRepo.UpdateProfile(ctx, id, req.FullName, req.Email, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, id)
}
