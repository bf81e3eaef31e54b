package repositories

import (
	"context"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/database"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	"github.com/google/uuid"
)

type UserRepository struct {
	q database.Querier
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

const userColumns = `id, username, email, password_hash, is_active, is_admin, last_login, failed_login_attempts, created_at, updated_at`

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.IsActive, &user.IsAdmin, &user.LastLogin, &user.FailedLoginAttempts,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

// Create inserts user. Duplicate username or email yields ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, username, email, password_hash, is_active, is_admin, failed_login_attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)
		RETURNING ` + userColumns

	return scanUserRow(r.q.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.IsActive, user.IsAdmin, user.CreatedAt, user.UpdatedAt,
	))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUserRow(r.q.QueryRow(ctx, query, username))
}

// UpdateLoginState persists the failed-attempt counter and last login stamp
func (r *UserRepository) UpdateLoginState(ctx context.Context, id string, failedAttempts int, lastLogin *time.Time) error {
	query := `
		UPDATE users SET failed_login_attempts = $1, last_login = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query, failedAttempts, lastLogin, time.Now().UTC(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
