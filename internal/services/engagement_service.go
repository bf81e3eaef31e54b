package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/BradenHooton/tiktok-automation/internal/automation"
	"github.com/BradenHooton/tiktok-automation/internal/models"
)

// Engagement field limits
const (
	MaxCommentLength     = 150
	MinTargetUsernameLen = 3
	MaxTargetUsernameLen = 50
)

// EngagementRepository defines the engagement persistence operations the services need
type EngagementRepository interface {
	Create(ctx context.Context, engagement *models.Engagement) (*models.Engagement, error)
	UpdateStatus(ctx context.Context, id, status string) error
	ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]*models.Engagement, error)
}

// EngagementService records engagement requests and runs them through the automation subsystem
type EngagementService struct {
	repo      EngagementRepository
	accounts  TikTokAccountRepository
	subsystem automation.Subsystem
	logger    *slog.Logger
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(repo EngagementRepository, accounts TikTokAccountRepository, subsystem automation.Subsystem, logger *slog.Logger) *EngagementService {
	return &EngagementService{
		repo:      repo,
		accounts:  accounts,
		subsystem: subsystem,
		logger:    logger,
	}
}

// Like asks the account to like the video at url
func (s *EngagementService) Like(ctx context.Context, ownerID, accountID, url string) (*models.Engagement, error) {
	if err := validateTargetURL(url); err != nil {
		return nil, err
	}
	return s.engage(ctx, ownerID, accountID, &models.Engagement{
		EngagementType: models.EngagementLike,
		TargetURL:      &url,
	}, func(ctx context.Context, handle string) (automation.Outcome, error) {
		return s.subsystem.LikeVideo(ctx, handle, url)
	})
}

// Comment asks the account to post text under the video at url
func (s *EngagementService) Comment(ctx context.Context, ownerID, accountID, url, text string) (*models.Engagement, error) {
	if err := validateTargetURL(url); err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(text); n < 1 || n > MaxCommentLength {
		return nil, models.NewValidationError("comment_text", fmt.Sprintf("must be between 1 and %d characters", MaxCommentLength))
	}
	return s.engage(ctx, ownerID, accountID, &models.Engagement{
		EngagementType: models.EngagementComment,
		TargetURL:      &url,
		CommentText:    &text,
	}, func(ctx context.Context, handle string) (automation.Outcome, error) {
		return s.subsystem.CommentVideo(ctx, handle, url, text)
	})
}

// Share asks the account to share the video at url to mode
func (s *EngagementService) Share(ctx context.Context, ownerID, accountID, url, mode string) (*models.Engagement, error) {
	if err := validateTargetURL(url); err != nil {
		return nil, err
	}
	if !models.IsValidShareType(mode) {
		return nil, models.NewValidationError("share_type", "unsupported share type")
	}
	return s.engage(ctx, ownerID, accountID, &models.Engagement{
		EngagementType: models.EngagementShare,
		TargetURL:      &url,
		ShareType:      &mode,
	}, func(ctx context.Context, handle string) (automation.Outcome, error) {
		return s.subsystem.ShareVideo(ctx, handle, url, mode)
	})
}

// Save asks the account to save the video at url
func (s *EngagementService) Save(ctx context.Context, ownerID, accountID, url string) (*models.Engagement, error) {
	if err := validateTargetURL(url); err != nil {
		return nil, err
	}
	return s.engage(ctx, ownerID, accountID, &models.Engagement{
		EngagementType: models.EngagementSave,
		TargetURL:      &url,
	}, func(ctx context.Context, handle string) (automation.Outcome, error) {
		return s.subsystem.SaveVideo(ctx, handle, url)
	})
}

// Follow asks the account to follow target
func (s *EngagementService) Follow(ctx context.Context, ownerID, accountID, target string) (*models.Engagement, error) {
	if n := utf8.RuneCountInString(target); n < MinTargetUsernameLen || n > MaxTargetUsernameLen {
		return nil, models.NewValidationError("username",
			fmt.Sprintf("must be between %d and %d characters", MinTargetUsernameLen, MaxTargetUsernameLen))
	}
	return s.engage(ctx, ownerID, accountID, &models.Engagement{
		EngagementType: models.EngagementFollow,
		TargetUsername: &target,
	}, func(ctx context.Context, handle string) (automation.Outcome, error) {
		return s.subsystem.FollowUser(ctx, handle, target)
	})
}

// List returns a page of engagements across all of the owner's accounts
func (s *EngagementService) List(ctx context.Context, ownerID string, skip, limit int) ([]*models.Engagement, error) {
	engagements, err := s.repo.ListByOwner(ctx, ownerID, skip, limit)
	if err != nil {
		s.logger.Error("failed to list engagements", slog.String("owner_id", ownerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}
	return engagements, nil
}

// engage records the engagement as pending, runs call and stores the outcome.
// A failed outcome still returns the record; a subsystem error marks it failed
// and is returned alongside it.
func (s *EngagementService) engage(ctx context.Context, ownerID, accountID string, engagement *models.Engagement, call func(ctx context.Context, handle string) (automation.Outcome, error)) (*models.Engagement, error) {
	account, err := s.accounts.GetByIDForOwner(ctx, accountID, ownerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get tiktok account", slog.String("account_id", accountID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to get tiktok account: %w", err)
	}

	engagement.AccountID = account.ID
	engagement.Status = models.StatusPending
	engagement, err = s.repo.Create(ctx, engagement)
	if err != nil {
		s.logger.Error("failed to create engagement", slog.String("account_id", account.ID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to create engagement: %w", err)
	}

	outcome, callErr := call(ctx, account.Username)

	var status string
	switch {
	case callErr != nil:
		status = models.StatusFailed
	case outcome == automation.OutcomeSucceeded:
		status = models.StatusCompleted
	case outcome == automation.OutcomeFailed:
		status = models.StatusFailed
	default:
		return engagement, nil
	}

	if err := s.repo.UpdateStatus(ctx, engagement.ID, status); err != nil {
		s.logger.Error("failed to update engagement status",
			slog.String("engagement_id", engagement.ID),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to update engagement status: %w", err)
	}
	engagement.Status = status

	if callErr != nil {
		s.logger.Error("automation engagement failed",
			slog.String("engagement_id", engagement.ID),
			slog.String("type", engagement.EngagementType),
			slog.Any("error", callErr))
		return engagement, fmt.Errorf("failed to run %s: %w", engagement.EngagementType, callErr)
	}

	s.logger.Info("engagement finished",
		slog.String("engagement_id", engagement.ID),
		slog.String("type", engagement.EngagementType),
		slog.String("outcome", outcome.String()))
	return engagement, nil
}

func validateTargetURL(url string) error {
	if !strings.HasPrefix(url, models.TikTokURLPrefix) {
		return models.NewValidationError("target_url", "must start with "+models.TikTokURLPrefix)
	}
	return nil
}
