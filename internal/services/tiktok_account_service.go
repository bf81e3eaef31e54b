package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/BradenHooton/tiktok-automation/internal/automation"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	pkgauth "github.com/BradenHooton/tiktok-automation/pkg/auth"
	pkglogger "github.com/BradenHooton/tiktok-automation/pkg/logger"
)

// TikTokAccountRepository defines the account persistence operations the services need
type TikTokAccountRepository interface {
	Create(ctx context.Context, account *models.TikTokAccount) (*models.TikTokAccount, error)
	GetByIDForOwner(ctx context.Context, id, ownerID string) (*models.TikTokAccount, error)
	ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]*models.TikTokAccount, error)
	ListAllByOwner(ctx context.Context, ownerID string) ([]*models.TikTokAccount, error)
}

// Cascader removes records together with their dependents in one transaction
type Cascader interface {
	DeleteTikTokAccount(ctx context.Context, accountID string) error
	DeleteUser(ctx context.Context, userID string) error
}

// VideoStore holds uploaded videos
type VideoStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// CreateTikTokAccountInput carries the fields of a new linked account
type CreateTikTokAccountInput struct {
	Username string
	Password string
	Country  string
	Proxy    *string
}

// TikTokAccountService manages the TikTok accounts linked to a user
type TikTokAccountService struct {
	repo        TikTokAccountRepository
	schedules   ScheduleRepository
	cascade     Cascader
	store       VideoStore
	subsystem   automation.Subsystem
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewTikTokAccountService creates a new TikTokAccountService
func NewTikTokAccountService(repo TikTokAccountRepository, schedules ScheduleRepository, cascade Cascader, store VideoStore, subsystem automation.Subsystem, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *TikTokAccountService {
	return &TikTokAccountService{
		repo:        repo,
		schedules:   schedules,
		cascade:     cascade,
		store:       store,
		subsystem:   subsystem,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Create stores the account with a hashed password and then registers it with
// the automation subsystem using the plaintext. A subsystem failure is returned
// but the stored account is kept.
func (s *TikTokAccountService) Create(ctx context.Context, ownerID string, input CreateTikTokAccountInput) (*models.TikTokAccount, error) {
	if !models.IsValidCountry(input.Country) {
		return nil, models.NewValidationError("country", "unsupported country")
	}

	if input.Proxy != nil && !models.IsValidProxyAddress(*input.Proxy) {
		return nil, models.NewValidationError("proxy", "must be an IPv4 address and port")
	}

	if n := utf8.RuneCountInString(input.Password); n < pkgauth.MinPasswordLen || len(input.Password) > pkgauth.MaxPasswordLen {
		return nil, models.NewValidationError("password",
			fmt.Sprintf("must be between %d and %d characters", pkgauth.MinPasswordLen, pkgauth.MaxPasswordLen))
	}

	hash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash account password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	account, err := s.repo.Create(ctx, &models.TikTokAccount{
		Username:     input.Username,
		PasswordHash: hash,
		Country:      input.Country,
		Proxy:        input.Proxy,
		OwnerID:      ownerID,
	})
	if err != nil {
		s.logger.Error("failed to create tiktok account", slog.String("owner_id", ownerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to create tiktok account: %w", err)
	}

	s.auditLogger.LogResourceAction(ctx, pkglogger.EventResourceCreate, ownerID, "tiktok_account", account.ID)

	if err := s.subsystem.AddAccount(ctx, account.Username, input.Password, account.Country, account.Proxy); err != nil {
		s.logger.Error("automation add_account failed",
			slog.String("account_id", account.ID),
			slog.Any("error", err))
		return account, fmt.Errorf("failed to register account with automation: %w", err)
	}

	return account, nil
}

// List returns a page of the owner's accounts
func (s *TikTokAccountService) List(ctx context.Context, ownerID string, skip, limit int) ([]*models.TikTokAccount, error) {
	accounts, err := s.repo.ListByOwner(ctx, ownerID, skip, limit)
	if err != nil {
		s.logger.Error("failed to list tiktok accounts", slog.String("owner_id", ownerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list tiktok accounts: %w", err)
	}
	return accounts, nil
}

// Get returns the account when ownerID owns it, ErrNotFound otherwise
func (s *TikTokAccountService) Get(ctx context.Context, ownerID, id string) (*models.TikTokAccount, error) {
	account, err := s.repo.GetByIDForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get tiktok account", slog.String("account_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("failed to get tiktok account: %w", err)
	}
	return account, nil
}

// Delete removes the account from the automation subsystem and then deletes it
// with its schedules, their videos and its engagements.
func (s *TikTokAccountService) Delete(ctx context.Context, ownerID, id string) error {
	account, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	schedules, err := s.schedules.ListByAccount(ctx, account.ID)
	if err != nil {
		s.logger.Error("failed to list account schedules", slog.String("account_id", account.ID), slog.Any("error", err))
		return fmt.Errorf("failed to list account schedules: %w", err)
	}

	if err := retireAccount(ctx, s.subsystem, account, schedules); err != nil {
		s.logger.Error("automation removal failed", slog.String("account_id", account.ID), slog.Any("error", err))
		return err
	}

	if err := s.cascade.DeleteTikTokAccount(ctx, account.ID); err != nil {
		s.logger.Error("failed to delete tiktok account", slog.String("account_id", account.ID), slog.Any("error", err))
		return fmt.Errorf("failed to delete tiktok account: %w", err)
	}

	removeVideos(ctx, s.store, s.logger, schedules)
	s.auditLogger.LogResourceAction(ctx, pkglogger.EventResourceDelete, ownerID, "tiktok_account", account.ID)
	return nil
}

// retireAccount withdraws the account's posts and then the account itself from the subsystem
func retireAccount(ctx context.Context, subsystem automation.Subsystem, account *models.TikTokAccount, schedules []*models.Schedule) error {
	for _, schedule := range schedules {
		if err := subsystem.RemovePost(ctx, schedule.ID); err != nil {
			return fmt.Errorf("failed to remove post %s from automation: %w", schedule.ID, err)
		}
	}
	if err := subsystem.RemoveAccount(ctx, account.Username); err != nil {
		return fmt.Errorf("failed to remove account %s from automation: %w", account.ID, err)
	}
	return nil
}

// removeVideos deletes stored videos once their records are gone. Failures are only logged.
func removeVideos(ctx context.Context, store VideoStore, logger *slog.Logger, schedules []*models.Schedule) {
	for _, schedule := range schedules {
		if err := store.Delete(ctx, schedule.VideoPath); err != nil {
			logger.Warn("failed to delete stored video",
				slog.String("schedule_id", schedule.ID),
				slog.String("video_path", schedule.VideoPath),
				slog.Any("error", err))
		}
	}
}
