package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/tiktok-automation/internal/auth"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	pkghttp "github.com/BradenHooton/tiktok-automation/pkg/http"
	"github.com/go-chi/chi/v5"
)

const proxyNotFound = "Proxy not found"

// ProxyService defines the interface for proxy pool business logic
type ProxyService interface {
	Create(ctx context.Context, actor *models.User, address, country string) (*models.Proxy, error)
	List(ctx context.Context, skip, limit int) ([]*models.Proxy, error)
	Delete(ctx context.Context, actor *models.User, id string) error
}

// ProxyHandler handles /proxies requests
type ProxyHandler struct {
	service ProxyService
	logger  *slog.Logger
}

func NewProxyHandler(service ProxyService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: service,
		logger:  logger,
	}
}

// CreateProxyRequest represents the request body for adding a proxy
type CreateProxyRequest struct {
	Address string `json:"address" validate:"required,proxyaddr"`
	Country string `json:"country" validate:"required,country"`
}

func (h *ProxyHandler) RegisterRoutes(router chi.Router) {
	router.Route("/proxies", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(auth.RequireAdmin).Post("/", h.Create)
		r.With(auth.RequireAdmin).Delete("/{id}", h.Delete)
	})
}

// Create adds a proxy to the pool. Admin only.
func (h *ProxyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		writeRequestError(w, err)
		return
	}

	proxy, err := h.service.Create(r.Context(), user, req.Address, req.Country)
	if err != nil {
		writeServiceError(w, h.logger, err, proxyNotFound)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, proxyModelToResponse(proxy))
}

// List returns the proxy pool. Open to every authenticated user.
func (h *ProxyHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	page, err := pkghttp.ParsePagination(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	proxies, err := h.service.List(r.Context(), page.Skip, page.Limit)
	if err != nil {
		writeServiceError(w, h.logger, err, proxyNotFound)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, mapSlice(proxies, proxyModelToResponse))
}

// Delete removes a proxy from the pool. Admin only.
func (h *ProxyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, chi.URLParam(r, "id"), proxyNotFound)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), user, id); err != nil {
		writeServiceError(w, h.logger, err, proxyNotFound)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, DetailResponse{Detail: "Proxy deleted"})
}
