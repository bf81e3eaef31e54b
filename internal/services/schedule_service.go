package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/automation"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	pkglogger "github.com/BradenHooton/tiktok-automation/pkg/logger"
)

// allowedVideoExtensions are matched case-insensitively against the upload's filename
var allowedVideoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
}

// scheduleTimeLayouts are tried in order. Layouts without a zone are read in local time.
var scheduleTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ScheduleRepository defines the schedule persistence operations the services need
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error)
	GetByIDForOwner(ctx context.Context, id, ownerID string) (*models.Schedule, error)
	ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]*models.Schedule, error)
	ListByAccount(ctx context.Context, accountID string) ([]*models.Schedule, error)
	ListAllByOwner(ctx context.Context, ownerID string) ([]*models.Schedule, error)
	Delete(ctx context.Context, id string) error
}

// CreateScheduleInput carries a scheduled post and its video upload
type CreateScheduleInput struct {
	AccountID    string
	Caption      string
	ScheduleTime string
	Tags         *string

	Filename    string
	ContentType string
	Size        int64
	Video       io.Reader
}

// ScheduleService manages scheduled video posts
type ScheduleService struct {
	repo        ScheduleRepository
	accounts    TikTokAccountRepository
	store       VideoStore
	subsystem   automation.Subsystem
	uploadDir   string
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

// NewScheduleService creates a new ScheduleService. Videos are stored under uploadDir.
func NewScheduleService(repo ScheduleRepository, accounts TikTokAccountRepository, store VideoStore, subsystem automation.Subsystem, uploadDir string, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *ScheduleService {
	return &ScheduleService{
		repo:        repo,
		accounts:    accounts,
		store:       store,
		subsystem:   subsystem,
		uploadDir:   uploadDir,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// SetClock replaces the time source used to reject past schedule times
func (s *ScheduleService) SetClock(now func() time.Time) {
	s.now = now
}

// Create validates the request, stores the video under
// {uploadDir}/{ownerID}/{16 hex}_{basename}, writes the schedule and hands the
// post to the automation subsystem. Nothing is stored if validation fails.
func (s *ScheduleService) Create(ctx context.Context, ownerID string, input CreateScheduleInput) (*models.Schedule, error) {
	account, err := s.accounts.GetByIDForOwner(ctx, input.AccountID, ownerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get tiktok account", slog.String("account_id", input.AccountID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to get tiktok account: %w", err)
	}

	basename, err := videoBasename(input.Filename)
	if err != nil {
		return nil, err
	}

	when, err := ParseScheduleTime(input.ScheduleTime)
	if err != nil {
		return nil, models.NewValidationError("schedule_time", "invalid schedule time format")
	}
	if !when.After(s.now()) {
		return nil, models.NewValidationError("schedule_time", "schedule time must be in the future")
	}

	prefix, err := randomHex(8)
	if err != nil {
		s.logger.Error("failed to generate video name", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	key := path.Join(s.uploadDir, ownerID, prefix+"_"+basename)

	if err := s.store.Put(ctx, key, input.Video, input.Size, input.ContentType); err != nil {
		s.logger.Error("failed to store video", slog.String("video_path", key), slog.Any("error", err))
		return nil, fmt.Errorf("failed to store video: %w", err)
	}

	schedule, err := s.repo.Create(ctx, &models.Schedule{
		VideoPath:    key,
		Caption:      input.Caption,
		ScheduleTime: when.UTC(),
		Tags:         input.Tags,
		Status:       models.StatusPending,
		OwnerID:      ownerID,
		AccountID:    account.ID,
	})
	if err != nil {
		s.logger.Error("failed to create schedule", slog.String("owner_id", ownerID), slog.Any("error", err))
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned video", slog.String("video_path", key), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	s.auditLogger.LogResourceAction(ctx, pkglogger.EventResourceCreate, ownerID, "schedule", schedule.ID)

	if err := s.subsystem.AddPost(ctx, account.Username, schedule.VideoPath, schedule.Caption, when, schedule.Tags); err != nil {
		s.logger.Error("automation add_post failed", slog.String("schedule_id", schedule.ID), slog.Any("error", err))
		return schedule, fmt.Errorf("failed to hand post to automation: %w", err)
	}

	return schedule, nil
}

// List returns a page of the owner's schedules
func (s *ScheduleService) List(ctx context.Context, ownerID string, skip, limit int) ([]*models.Schedule, error) {
	schedules, err := s.repo.ListByOwner(ctx, ownerID, skip, limit)
	if err != nil {
		s.logger.Error("failed to list schedules", slog.String("owner_id", ownerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// Get returns the schedule when ownerID owns it, ErrNotFound otherwise
func (s *ScheduleService) Get(ctx context.Context, ownerID, id string) (*models.Schedule, error) {
	schedule, err := s.repo.GetByIDForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get schedule", slog.String("schedule_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return schedule, nil
}

// Delete withdraws the post from the automation subsystem, deletes the record
// and then its stored video.
func (s *ScheduleService) Delete(ctx context.Context, ownerID, id string) error {
	schedule, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.subsystem.RemovePost(ctx, schedule.ID); err != nil {
		s.logger.Error("automation remove_post failed", slog.String("schedule_id", schedule.ID), slog.Any("error", err))
		return fmt.Errorf("failed to remove post from automation: %w", err)
	}

	if err := s.repo.Delete(ctx, schedule.ID); err != nil {
		s.logger.Error("failed to delete schedule", slog.String("schedule_id", schedule.ID), slog.Any("error", err))
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	removeVideos(ctx, s.store, s.logger, []*models.Schedule{schedule})
	s.auditLogger.LogResourceAction(ctx, pkglogger.EventResourceDelete, ownerID, "schedule", schedule.ID)
	return nil
}

// ParseScheduleTime reads an ISO-8601 timestamp. Values without an offset are local time.
func ParseScheduleTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range scheduleTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", value)
}

// videoBasename strips any client supplied directories and checks the extension
func videoBasename(filename string) (string, error) {
	name := filename[strings.LastIndexAny(filename, `/\`)+1:]
	if name == "" || name == "." || name == ".." {
		return "", models.NewValidationError("video", "missing file name")
	}

	if !allowedVideoExtensions[strings.ToLower(path.Ext(name))] {
		return "", models.NewValidationError("video", "unsupported file type, must be mp4, mov or avi")
	}
	return name, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
