package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/tiktok-automation/internal/database"
	"github.com/jackc/pgx/v5"
)

// Cascade deletes a record together with its dependents. The schema
// restricts foreign key deletes, so every dependent row is removed
// explicitly, in one transaction.
type Cascade struct {
	db *database.DB
}

func NewCascade(db *database.DB) *Cascade {
	return &Cascade{db: db}
}

// DeleteTikTokAccount removes the account's engagements, its schedules and then the account
func (c *Cascade) DeleteTikTokAccount(ctx context.Context, accountID string) error {
	return c.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return deleteAccountTx(ctx, tx, accountID)
	})
}

// DeleteUser removes every account the user owns (with dependents),
// any remaining schedules the user created and then the user.
func (c *Cascade) DeleteUser(ctx context.Context, userID string) error {
	return c.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		accounts, err := (&TikTokAccountRepository{q: tx}).ListAllByOwner(ctx, userID)
		if err != nil {
			return err
		}

		for _, account := range accounts {
			if err := deleteAccountTx(ctx, tx, account.ID); err != nil {
				return err
			}
		}

		if _, err := (&ScheduleRepository{q: tx}).DeleteByOwner(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete schedules of user %s: %w", userID, err)
		}

		return (&UserRepository{q: tx}).Delete(ctx, userID)
	})
}

func deleteAccountTx(ctx context.Context, tx pgx.Tx, accountID string) error {
	if _, err := (&EngagementRepository{q: tx}).DeleteByAccount(ctx, accountID); err != nil {
		return fmt.Errorf("failed to delete engagements of account %s: %w", accountID, err)
	}

	if _, err := (&ScheduleRepository{q: tx}).DeleteByAccount(ctx, accountID); err != nil {
		return fmt.Errorf("failed to delete schedules of account %s: %w", accountID, err)
	}

	return (&TikTokAccountRepository{q: tx}).Delete(ctx, accountID)
}
