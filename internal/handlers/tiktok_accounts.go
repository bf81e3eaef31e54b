package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/tiktok-automation/internal/models"
	"github.com/BradenHooton/tiktok-automation/internal/services"
	pkghttp "github.com/BradenHooton/tiktok-automation/pkg/http"
	"github.com/go-chi/chi/v5"
)

const accountNotFound = "TikTok account not found"

// TikTokAccountService defines the interface for linked account business logic
type TikTokAccountService interface {
	Create(ctx context.Context, ownerID string, input services.CreateTikTokAccountInput) (*models.TikTokAccount, error)
	List(ctx context.Context, ownerID string, skip, limit int) ([]*models.TikTokAccount, error)
	Get(ctx context.Context, ownerID, id string) (*models.TikTokAccount, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// TikTokAccountHandler handles /tiktok-accounts requests
type TikTokAccountHandler struct {
	service TikTokAccountService
	logger  *slog.Logger
}

// NewTikTokAccountHandler creates a new TikTokAccountHandler
func NewTikTokAccountHandler(service TikTokAccountService, logger *slog.Logger) *TikTokAccountHandler {
	return &TikTokAccountHandler{
		service: service,
		logger:  logger,
	}
}

// CreateTikTokAccountRequest represents the request body for linking an account
type CreateTikTokAccountRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Country  string  `json:"country" validate:"required,country"`
	Proxy    *string `json:"proxy" validate:"omitempty,proxyaddr"`
}

// RegisterRoutes registers the account routes on an authenticated router
func (h *TikTokAccountHandler) RegisterRoutes(router chi.Router) {
	router.Route("/tiktok-accounts", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
}

// Create links a TikTok account to the caller
//
// @Summary Link TikTok account
// @Accept json
// @Param request body CreateTikTokAccountRequest true "Account"
// @Produce json
// @Success 201 {object} TikTokAccountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /tiktok-accounts [post]
func (h *TikTokAccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateTikTokAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		writeRequestError(w, err)
		return
	}

	account, err := h.service.Create(r.Context(), user.ID, services.CreateTikTokAccountInput{
		Username: req.Username,
		Password: req.Password,
		Country:  req.Country,
		Proxy:    req.Proxy,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, accountNotFound)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, accountModelToResponse(account))
}

// List returns the caller's linked accounts
func (h *TikTokAccountHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	page, err := pkghttp.ParsePagination(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	accounts, err := h.service.List(r.Context(), user.ID, page.Skip, page.Limit)
	if err != nil {
		writeServiceError(w, h.logger, err, accountNotFound)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, mapSlice(accounts, accountModelToResponse))
}

// Get returns one of the caller's linked accounts
func (h *TikTokAccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, chi.URLParam(r, "id"), accountNotFound)
	if !ok {
		return
	}

	account, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, h.logger, err, accountNotFound)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, accountModelToResponse(account))
}

// Delete unlinks an account and removes its schedules and engagements
func (h *TikTokAccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, chi.URLParam(r, "id"), accountNotFound)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, h.logger, err, accountNotFound)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, DetailResponse{Detail: "TikTok account deleted"})
}
