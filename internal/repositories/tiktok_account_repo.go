package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/database"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	"github.com/google/uuid"
)

type TikTokAccountRepository struct {
	q database.Querier
}

func NewTikTokAccountRepository(db *database.DB) *TikTokAccountRepository {
	return &TikTokAccountRepository{q: db.Pool}
}

const accountColumns = `id, username, password_hash, country, proxy, owner_id, created_at`

func scanAccountRow(scanner rowScanner) (*models.TikTokAccount, error) {
	var account models.TikTokAccount

	err := scanner.Scan(
		&account.ID, &account.Username, &account.PasswordHash,
		&account.Country, &account.Proxy, &account.OwnerID, &account.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &account, nil
}

func (r *TikTokAccountRepository) Create(ctx context.Context, account *models.TikTokAccount) (*models.TikTokAccount, error) {
	account.ID = uuid.New().String()
	account.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO tiktok_accounts (id, username, password_hash, country, proxy, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + accountColumns

	return scanAccountRow(r.q.QueryRow(ctx, query,
		account.ID, account.Username, account.PasswordHash,
		account.Country, account.Proxy, account.OwnerID, account.CreatedAt,
	))
}

// GetByIDForOwner returns ErrNotFound when the account belongs to someone else
func (r *TikTokAccountRepository) GetByIDForOwner(ctx context.Context, id, ownerID string) (*models.TikTokAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM tiktok_accounts WHERE id = $1 AND owner_id = $2`
	return scanAccountRow(r.q.QueryRow(ctx, query, id, ownerID))
}

func (r *TikTokAccountRepository) ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]*models.TikTokAccount, error) {
	query := `
		SELECT ` + accountColumns + ` FROM tiktok_accounts
		WHERE owner_id = $1 ORDER BY created_at, id LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(ctx, query, ownerID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to query tiktok accounts: %w", err)
	}

	return scanRows(rows, scanAccountRow)
}

// ListAllByOwner returns every account of ownerID, unpaginated
func (r *TikTokAccountRepository) ListAllByOwner(ctx context.Context, ownerID string) ([]*models.TikTokAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM tiktok_accounts WHERE owner_id = $1 ORDER BY created_at, id`

	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tiktok accounts: %w", err)
	}

	return scanRows(rows, scanAccountRow)
}

func (r *TikTokAccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.Exec(ctx, `DELETE FROM tiktok_accounts WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
