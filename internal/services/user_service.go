package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BradenHooton/tiktok-automation/internal/automation"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	pkglogger "github.com/BradenHooton/tiktok-automation/pkg/logger"
)

// UserService handles user business logic
type UserService struct {
	repo        UserRepository
	accounts    TikTokAccountRepository
	schedules   ScheduleRepository
	cascade     Cascader
	store       VideoStore
	subsystem   automation.Subsystem
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, accounts TikTokAccountRepository, schedules ScheduleRepository, cascade Cascader, store VideoStore, subsystem automation.Subsystem, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *UserService {
	return &UserService{
		repo:        repo,
		accounts:    accounts,
		schedules:   schedules,
		cascade:     cascade,
		store:       store,
		subsystem:   subsystem,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// DeleteAccount removes the user and everything they own. Every linked
// account and its posts are withdrawn from the automation subsystem first;
// if any removal fails nothing is deleted.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	accounts, err := s.accounts.ListAllByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list user accounts", slog.String("user_id", userID), slog.Any("error", err))
		return fmt.Errorf("failed to list tiktok accounts: %w", err)
	}

	schedules, err := s.schedules.ListAllByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list user schedules", slog.String("user_id", userID), slog.Any("error", err))
		return fmt.Errorf("failed to list schedules: %w", err)
	}

	byAccount := make(map[string][]*models.Schedule, len(accounts))
	for _, schedule := range schedules {
		byAccount[schedule.AccountID] = append(byAccount[schedule.AccountID], schedule)
	}

	for _, account := range accounts {
		if err := retireAccount(ctx, s.subsystem, account, byAccount[account.ID]); err != nil {
			s.logger.Error("automation removal failed",
				slog.String("user_id", userID),
				slog.String("account_id", account.ID),
				slog.Any("error", err))
			return err
		}
	}

	if err := s.cascade.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.String("user_id", userID), slog.Any("error", err))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	removeVideos(ctx, s.store, s.logger, schedules)

	s.logger.Info("user deleted",
		slog.String("user_id", userID),
		slog.Int("tiktok_accounts", len(accounts)),
		slog.Int("schedules", len(schedules)))
	s.auditLogger.LogAccountAction(ctx, pkglogger.EventAccountDeleted, userID, nil)
	return nil
}
