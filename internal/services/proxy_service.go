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

// ProxyRepository defines the proxy persistence operations the services need
type ProxyRepository interface {
	Create(ctx context.Context, proxy *models.Proxy) (*models.Proxy, error)
	GetByID(ctx context.Context, id string) (*models.Proxy, error)
	List(ctx context.Context, skip, limit int) ([]*models.Proxy, error)
	Delete(ctx context.Context, id string) error
}

// ProxyService manages the shared proxy pool. Only admins may change it.
type ProxyService struct {
	repo        ProxyRepository
	subsystem   automation.Subsystem
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewProxyService creates a new ProxyService
func NewProxyService(repo ProxyRepository, subsystem automation.Subsystem, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *ProxyService {
	return &ProxyService{
		repo:        repo,
		subsystem:   subsystem,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Create adds a proxy and registers it with the automation subsystem
func (s *ProxyService) Create(ctx context.Context, actor *models.User, address, country string) (*models.Proxy, error) {
	if !actor.IsAdmin {
		s.logger.Warn("non-admin attempted to add proxy", slog.String("user_id", actor.ID))
		return nil, models.ErrForbidden
	}

	if !models.IsValidProxyAddress(address) {
		return nil, models.NewValidationError("address", "must be an IPv4 address and port")
	}

	if !models.IsValidCountry(country) {
		return nil, models.NewValidationError("country", "unsupported country")
	}

	proxy, err := s.repo.Create(ctx, &models.Proxy{
		Address:  address,
		Country:  country,
		IsActive: true,
	})
	if err != nil {
		s.logger.Error("failed to create proxy", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create proxy: %w", err)
	}

	s.auditLogger.LogResourceAction(ctx, pkglogger.EventResourceCreate, actor.ID, "proxy", proxy.ID)

	if err := s.subsystem.AddProxy(ctx, proxy.Address, proxy.Country); err != nil {
		s.logger.Error("automation add_proxy failed", slog.String("proxy_id", proxy.ID), slog.Any("error", err))
		return proxy, fmt.Errorf("failed to register proxy with automation: %w", err)
	}

	return proxy, nil
}

// List returns a page of proxies. Any authenticated user may list them.
func (s *ProxyService) List(ctx context.Context, skip, limit int) ([]*models.Proxy, error) {
	proxies, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		s.logger.Error("failed to list proxies", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list proxies: %w", err)
	}
	return proxies, nil
}

// Delete withdraws the proxy from the automation subsystem and deletes it
func (s *ProxyService) Delete(ctx context.Context, actor *models.User, id string) error {
	if !actor.IsAdmin {
		s.logger.Warn("non-admin attempted to delete proxy", slog.String("user_id", actor.ID))
		return models.ErrForbidden
	}

	proxy, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get proxy", slog.String("proxy_id", id), slog.Any("error", err))
		return fmt.Errorf("failed to get proxy: %w", err)
	}

	if err := s.subsystem.RemoveProxy(ctx, proxy.Address); err != nil {
		s.logger.Error("automation remove_proxy failed", slog.String("proxy_id", proxy.ID), slog.Any("error", err))
		return fmt.Errorf("failed to remove proxy from automation: %w", err)
	}

	if err := s.repo.Delete(ctx, proxy.ID); err != nil {
		s.logger.Error("failed to delete proxy", slog.String("proxy_id", proxy.ID), slog.Any("error", err))
		return fmt.Errorf("failed to delete proxy: %w", err)
	}

	s.auditLogger.LogResourceAction(ctx, pkglogger.EventResourceDelete, actor.ID, "proxy", proxy.ID)
	return nil
}
