package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockledger/internal/core/apperror"
	"stockledger/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts int
	AttemptWindow    time.Duration
	AdminName        string
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts: 5,
		AttemptWindow:    5 * time.Minute,
		AdminName:        "admin",
	}
}

// Service authenticates the admin principal.
type Service struct {
	repo       Repository
	jwtService *JWTService
	limiter    *LoginLimiter
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(repo Repository, jwtService *JWTService, config ServiceConfig) *Service {
	return &Service{
		repo:       repo,
		jwtService: jwtService,
		limiter:    NewLoginLimiter(config.MaxLoginAttempts, config.AttemptWindow),
		config:     config,
	}
}

// Login verifies the admin password and issues an access token. Attempts are
// rate limited per clientKey (the caller's remote address); exceeding the
// limit fails with TOO_MANY_ATTEMPTS before the password is even checked.
func (s *Service) Login(ctx context.Context, clientKey string, creds Credentials) (*Token, error) {
	if ok, retryAfter := s.limiter.Allow(clientKey); !ok {
		logger.Warn(ctx, "login rate limited",
			"client", clientKey,
			"retry_after", retryAfter)
		return nil, apperror.NewTooManyAttempts(int(retryAfter.Seconds()) + 1)
	}

	admin, err := s.repo.Get(ctx)
	if err != nil {
		s.limiter.RecordFailure(clientKey)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(creds.Password)); err != nil {
		s.limiter.RecordFailure(clientKey)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	s.limiter.Reset(clientKey)

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(s.config.AdminName)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	logger.Info(ctx, "admin logged in", "client", clientKey)

	return &Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// ChangePassword replaces the stored admin password hash.
func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	admin, err := s.repo.Get(ctx)
	if err != nil {
		return apperror.NewUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(current)); err != nil {
		return apperror.NewUnauthorized("invalid credentials")
	}
	if len(next) < 8 {
		return apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.SetPasswordHash(ctx, string(hash)); err != nil {
		return fmt.Errorf("store password hash: %w", err)
	}

	logger.Info(ctx, "admin password changed")
	return nil
}

// ValidateToken exposes token validation for the HTTP middleware.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	return s.jwtService.ValidateToken(tokenString)
}
