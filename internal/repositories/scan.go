package repositories

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

// rowScanner supports both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRows drains and closes rows, scanning each with scan
func scanRows[T any](rows pgx.Rows, scan func(rowScanner) (*T, error)) ([]*T, error) {
	defer rows.Close()

	items := make([]*T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}
