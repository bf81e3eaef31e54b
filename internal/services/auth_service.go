package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/auth"
	"github.com/BradenHooton/tiktok-automation/internal/config"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	pkgauth "github.com/BradenHooton/tiktok-automation/pkg/auth"
	pkglogger "github.com/BradenHooton/tiktok-automation/pkg/logger"
)

// UserRepository defines the user persistence operations the services need
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateLoginState(ctx context.Context, id string, failedAttempts int, lastLogin *time.Time) error
}

// LockoutNotifier is told when a user reaches the failed attempt threshold.
type LockoutNotifier interface {
	NotifyLockout(ctx context.Context, user *models.User) error
}

// AuthService handles credential verification, registration and token resolution
type AuthService struct {
	repo        UserRepository
	tm          *auth.TokenManager
	notifier    LockoutNotifier
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger

	maxFailedAttempts int
	lockoutWindow     time.Duration
	tokenTTL          time.Duration
	now               func() time.Time
}

// NewAuthService creates a new AuthService. notifier may be nil.
func NewAuthService(repo UserRepository, tm *auth.TokenManager, notifier LockoutNotifier, cfg config.AuthConfig, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:              repo,
		tm:                tm,
		notifier:          notifier,
		logger:            logger,
		auditLogger:       auditLogger,
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutWindow:     cfg.LockoutWindow,
		tokenTTL:          cfg.AccessTokenExpiry,
		now:               time.Now,
	}
}

// SetClock replaces the time source used for lockout accounting
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// VerifyCredentials checks handle and password and maintains the failed
// attempt counter. Once the counter reaches the threshold every attempt is
// refused, without comparing the hash, until the lockout window has passed
// since the last recorded attempt.
func (s *AuthService) VerifyCredentials(ctx context.Context, handle, password string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, handle)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: unknown user")
			s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
				EventType:     pkglogger.EventLogin,
				Username:      handle,
				FailureReason: "unknown_user",
			})
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user by username", slog.Any("error", err))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	now := s.now().UTC()

	if user.FailedLoginAttempts >= s.maxFailedAttempts {
		if user.LastLogin != nil && now.Sub(*user.LastLogin) < s.lockoutWindow {
			s.logger.Info("login refused: account locked", slog.String("user_id", user.ID))
			s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
				EventType:     pkglogger.EventLockout,
				Username:      user.Username,
				UserID:        user.ID,
				FailureReason: "locked_out",
			})
			return nil, models.ErrLockedOut
		}
		user.FailedLoginAttempts = 0
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		user.FailedLoginAttempts++
		user.LastLogin = &now
		if err := s.repo.UpdateLoginState(ctx, user.ID, user.FailedLoginAttempts, user.LastLogin); err != nil {
			s.logger.Error("failed to record failed login", slog.String("user_id", user.ID), slog.Any("error", err))
			return nil, fmt.Errorf("failed to record login state: %w", err)
		}

		s.logger.Info("login failed: invalid credentials",
			slog.String("user_id", user.ID),
			slog.Int("failed_attempts", user.FailedLoginAttempts))
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType:     pkglogger.EventLogin,
			Username:      user.Username,
			UserID:        user.ID,
			FailureReason: "invalid_credentials",
		})

		if user.FailedLoginAttempts == s.maxFailedAttempts {
			s.notifyLockout(ctx, user)
		}
		return nil, models.ErrInvalidCredentials
	}

	user.FailedLoginAttempts = 0
	user.LastLogin = &now
	if err := s.repo.UpdateLoginState(ctx, user.ID, 0, user.LastLogin); err != nil {
		s.logger.Error("failed to record successful login", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to record login state: %w", err)
	}

	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventLogin,
		Username:  user.Username,
		UserID:    user.ID,
		Success:   true,
	})
	return user, nil
}

// Login verifies credentials and issues a bearer token
func (s *AuthService) Login(ctx context.Context, handle, password string) (*models.TokenResponse, error) {
	user, err := s.VerifyCredentials(ctx, handle, password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tm.IssueToken(user.Username, s.tokenTTL)
	if err != nil {
		s.logger.Error("failed to issue token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// Register creates a new user. Duplicate usernames or emails return ErrConflict.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError("password", err.Error())
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("registration rejected: username or email taken")
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", pkglogger.SanitizedEmail(user.Email)))
	s.auditLogger.LogAccountAction(ctx, pkglogger.EventRegister, user.ID, nil)
	return user, nil
}

// ResolveToken validates a bearer token and returns its active owner
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tm.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}

	if !user.IsActive {
		return nil, models.ErrInactive
	}
	return user, nil
}

func (s *AuthService) notifyLockout(ctx context.Context, user *models.User) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyLockout(ctx, user); err != nil {
		s.logger.Warn("failed to send lockout notification",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
	}
}
