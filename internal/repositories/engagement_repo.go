package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/database"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	"github.com/google/uuid"
)

type EngagementRepository struct {
	q database.Querier
}

func NewEngagementRepository(db *database.DB) *EngagementRepository {
	return &EngagementRepository{q: db.Pool}
}

const engagementColumns = `id, account_id, engagement_type, target_url, target_username, comment_text, share_type, status, created_at`

func scanEngagementRow(scanner rowScanner) (*models.Engagement, error) {
	var e models.Engagement

	err := scanner.Scan(
		&e.ID, &e.AccountID, &e.EngagementType, &e.TargetURL, &e.TargetUsername,
		&e.CommentText, &e.ShareType, &e.Status, &e.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &e, nil
}

func (r *EngagementRepository) Create(ctx context.Context, e *models.Engagement) (*models.Engagement, error) {
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now().UTC()
	if e.Status == "" {
		e.Status = models.StatusPending
	}

	query := `
		INSERT INTO engagements (id, account_id, engagement_type, target_url, target_username, comment_text, share_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + engagementColumns

	return scanEngagementRow(r.q.QueryRow(ctx, query,
		e.ID, e.AccountID, e.EngagementType, e.TargetURL, e.TargetUsername,
		e.CommentText, e.ShareType, e.Status, e.CreatedAt,
	))
}

func (r *EngagementRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.q.Exec(ctx, `UPDATE engagements SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ListByOwner returns engagements of every account owned by ownerID
func (r *EngagementRepository) ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]*models.Engagement, error) {
	query := `
		SELECT e.id, e.account_id, e.engagement_type, e.target_url, e.target_username,
		       e.comment_text, e.share_type, e.status, e.created_at
		FROM engagements e
		JOIN tiktok_accounts a ON a.id = e.account_id
		WHERE a.owner_id = $1
		ORDER BY e.created_at DESC, e.id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(ctx, query, ownerID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to query engagements: %w", err)
	}

	return scanRows(rows, scanEngagementRow)
}

func (r *EngagementRepository) DeleteByAccount(ctx context.Context, accountID string) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM engagements WHERE account_id = $1`, accountID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}

// FailStale marks pending engagements created before cutoff as failed
func (r *EngagementRepository) FailStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE engagements SET status = $1 WHERE status = $2 AND created_at < $3`

	result, err := r.q.Exec(ctx, query, models.StatusFailed, models.StatusPending, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
