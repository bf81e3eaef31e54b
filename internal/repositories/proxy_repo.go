package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/database"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	"github.com/google/uuid"
)

type ProxyRepository struct {
	q database.Querier
}

func NewProxyRepository(db *database.DB) *ProxyRepository {
	return &ProxyRepository{q: db.Pool}
}

const proxyColumns = `id, address, country, is_active, created_at`

func scanProxyRow(scanner rowScanner) (*models.Proxy, error) {
	var proxy models.Proxy

	err := scanner.Scan(&proxy.ID, &proxy.Address, &proxy.Country, &proxy.IsActive, &proxy.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &proxy, nil
}

func (r *ProxyRepository) Create(ctx context.Context, proxy *models.Proxy) (*models.Proxy, error) {
	proxy.ID = uuid.New().String()
	proxy.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO proxies (id, address, country, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + proxyColumns

	return scanProxyRow(r.q.QueryRow(ctx, query,
		proxy.ID, proxy.Address, proxy.Country, proxy.IsActive, proxy.CreatedAt,
	))
}

func (r *ProxyRepository) GetByID(ctx context.Context, id string) (*models.Proxy, error) {
	query := `SELECT ` + proxyColumns + ` FROM proxies WHERE id = $1`
	return scanProxyRow(r.q.QueryRow(ctx, query, id))
}

func (r *ProxyRepository) List(ctx context.Context, skip, limit int) ([]*models.Proxy, error) {
	query := `SELECT ` + proxyColumns + ` FROM proxies ORDER BY created_at, id LIMIT $1 OFFSET $2`

	rows, err := r.q.Query(ctx, query, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to query proxies: %w", err)
	}

	return scanRows(rows, scanProxyRow)
}

func (r *ProxyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.Exec(ctx, `DELETE FROM proxies WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
