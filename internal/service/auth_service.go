package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-workflow/internal/auth"
	"github.com/spec-kit/issue-workflow/internal/config"
	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/repository"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util/errorutil"
)

// AuthService handles login and account provisioning.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	cfg    config.AuthConfig
	logger *zap.Logger
}

// NewAuthService creates the service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, cfg: cfg, logger: logger}
}

// LoginResult carries a freshly issued token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Login verifies credentials and issues a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// RegisterInput describes an account to provision.
type RegisterInput struct {
	Email    string
	FullName string
	Password string
	IsAdmin  bool
}

// Register provisions a new account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	violations := map[string][]string{}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		violations["email"] = append(violations["email"], "Email is required.")
	}
	if strings.TrimSpace(input.FullName) == "" {
		violations["full_name"] = append(violations["full_name"], "Full name is required.")
	}
	if len(input.Password) < 8 {
		violations["password"] = append(violations["password"], "Password should have 8 characters or more.")
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidation(violations)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	hashed, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hashed,
		IsAdmin:      input.IsAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}
