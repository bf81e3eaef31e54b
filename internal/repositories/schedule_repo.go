package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/database"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	"github.com/google/uuid"
)

type ScheduleRepository struct {
	q database.Querier
}

func NewScheduleRepository(db *database.DB) *ScheduleRepository {
	return &ScheduleRepository{q: db.Pool}
}

const scheduleColumns = `id, video_path, caption, schedule_time, tags, status, owner_id, account_id, created_at`

func scanScheduleRow(scanner rowScanner) (*models.Schedule, error) {
	var schedule models.Schedule

	err := scanner.Scan(
		&schedule.ID, &schedule.VideoPath, &schedule.Caption, &schedule.ScheduleTime,
		&schedule.Tags, &schedule.Status, &schedule.OwnerID, &schedule.AccountID, &schedule.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &schedule, nil
}

func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error) {
	schedule.ID = uuid.New().String()
	schedule.CreatedAt = time.Now().UTC()
	if schedule.Status == "" {
		schedule.Status = models.StatusPending
	}

	query := `
		INSERT INTO schedules (id, video_path, caption, schedule_time, tags, status, owner_id, account_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + scheduleColumns

	return scanScheduleRow(r.q.QueryRow(ctx, query,
		schedule.ID, schedule.VideoPath, schedule.Caption, schedule.ScheduleTime,
		schedule.Tags, schedule.Status, schedule.OwnerID, schedule.AccountID, schedule.CreatedAt,
	))
}

// GetByIDForOwner returns ErrNotFound when the schedule belongs to someone else
func (r *ScheduleRepository) GetByIDForOwner(ctx context.Context, id, ownerID string) (*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1 AND owner_id = $2`
	return scanScheduleRow(r.q.QueryRow(ctx, query, id, ownerID))
}

func (r *ScheduleRepository) ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]*models.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + ` FROM schedules
		WHERE owner_id = $1 ORDER BY schedule_time, id LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(ctx, query, ownerID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}

	return scanRows(rows, scanScheduleRow)
}

// ListByAccount returns every schedule targeting accountID
func (r *ScheduleRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE account_id = $1 ORDER BY schedule_time, id`

	rows, err := r.q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}

	return scanRows(rows, scanScheduleRow)
}

// ListAllByOwner returns every schedule created by ownerID, unpaginated
func (r *ScheduleRepository) ListAllByOwner(ctx context.Context, ownerID string) ([]*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE owner_id = $1 ORDER BY schedule_time, id`

	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}

	return scanRows(rows, scanScheduleRow)
}

func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *ScheduleRepository) DeleteByAccount(ctx context.Context, accountID string) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM schedules WHERE account_id = $1`, accountID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}

func (r *ScheduleRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM schedules WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
