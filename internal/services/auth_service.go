package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/printcraft/loyalty-backend/internal/config"
	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

var errInvalidCredentials = errors.New("invalid credentials")

type AuthServiceImpl struct {
	adminRepo repositories.AdminUserRepository
	cfg       *config.Config
}

func NewAuthService(adminRepo repositories.AdminUserRepository, cfg *config.Config) *AuthServiceImpl {
	return &AuthServiceImpl{
		adminRepo: adminRepo,
		cfg:       cfg,
	}
}

// Login verifies a dashboard account and issues a signed bearer token. The
// same generic error covers unknown emails and wrong passwords.
func (s *AuthServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, errInvalidCredentials
		}
		slog.Error("Failed to look up admin user", "error", err, "email", req.Email)
		return nil, fmt.Errorf("failed to look up admin user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.ExpiresIn) * time.Second)
	claims := jwt.MapClaims{
		"sub":   user.ID.Hex(),
		"email": user.Email,
		"role":  user.Role,
		"exp":   expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		slog.Error("Failed to sign token", "error", err)
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	slog.Info("Admin logged in", "email", user.Email)
	return &models.LoginResponse{Token: signed, ExpiresAt: expiresAt}, nil
}

// EnsureAdmin creates the bootstrap dashboard account when it does not exist
// yet. Called at startup with the configured credentials.
func (s *AuthServiceImpl) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.adminRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if err != repositories.ErrNotFound {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.AdminUser{
		Email:     email,
		Password:  string(hash),
		Role:      "admin",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.adminRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	slog.Info("Bootstrap admin account created", "email", email)
	return nil
}

// IsInvalidCredentials lets handlers map the auth failure to a 401 without
// matching on message text.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, errInvalidCredentials)
}
