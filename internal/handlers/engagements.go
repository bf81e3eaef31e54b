package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/tiktok-automation/internal/models"
	pkghttp "github.com/BradenHooton/tiktok-automation/pkg/http"
	"github.com/go-chi/chi/v5"
)

// EngagementService defines the interface for engagement business logic
type EngagementService interface {
	Like(ctx context.Context, ownerID, accountID, url string) (*models.Engagement, error)
	Comment(ctx context.Context, ownerID, accountID, url, text string) (*models.Engagement, error)
	Share(ctx context.Context, ownerID, accountID, url, mode string) (*models.Engagement, error)
	Save(ctx context.Context, ownerID, accountID, url string) (*models.Engagement, error)
	Follow(ctx context.Context, ownerID, accountID, target string) (*models.Engagement, error)
	List(ctx context.Context, ownerID string, skip, limit int) ([]*models.Engagement, error)
}

// EngagementHandler handles /engagements requests
type EngagementHandler struct {
	service EngagementService
	logger  *slog.Logger
}

func NewEngagementHandler(service EngagementService, logger *slog.Logger) *EngagementHandler {
	return &EngagementHandler{
		service: service,
		logger:  logger,
	}
}

// Request DTOs

type VideoEngagementRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	TargetURL string `json:"target_url" validate:"required,tiktokurl"`
}

type CommentRequest struct {
	AccountID   string `json:"account_id" validate:"required"`
	TargetURL   string `json:"target_url" validate:"required,tiktokurl"`
	CommentText string `json:"comment_text" validate:"required,min=1,max=150"`
}

type ShareRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	TargetURL string `json:"target_url" validate:"required,tiktokurl"`
	ShareType string `json:"share_type" validate:"required,sharetype"`
}

type FollowRequest struct {
	AccountID      string `json:"account_id" validate:"required"`
	TargetUsername string `json:"username" validate:"required,min=3,max=50"`
}

func (h *EngagementHandler) RegisterRoutes(router chi.Router) {
	router.Route("/engagements", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/like", h.Like)
		r.Post("/comment", h.Comment)
		r.Post("/share", h.Share)
		r.Post("/save", h.Save)
		r.Post("/follow", h.Follow)
	})
}

// Like asks one of the caller's accounts to like a video
//
// @Summary Like video
// @Accept json
// @Param request body VideoEngagementRequest true "Target"
// @Produce json
// @Success 201 {object} EngagementResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /engagements/like [post]
func (h *EngagementHandler) Like(w http.ResponseWriter, r *http.Request) {
	var req VideoEngagementRequest
	h.handle(w, r, &req, func(ctx context.Context, ownerID string) (*models.Engagement, error) {
		return h.service.Like(ctx, ownerID, req.AccountID, req.TargetURL)
	}, func() string { return req.AccountID })
}

func (h *EngagementHandler) Comment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	h.handle(w, r, &req, func(ctx context.Context, ownerID string) (*models.Engagement, error) {
		return h.service.Comment(ctx, ownerID, req.AccountID, req.TargetURL, req.CommentText)
	}, func() string { return req.AccountID })
}

func (h *EngagementHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	h.handle(w, r, &req, func(ctx context.Context, ownerID string) (*models.Engagement, error) {
		return h.service.Share(ctx, ownerID, req.AccountID, req.TargetURL, req.ShareType)
	}, func() string { return req.AccountID })
}

func (h *EngagementHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req VideoEngagementRequest
	h.handle(w, r, &req, func(ctx context.Context, ownerID string) (*models.Engagement, error) {
		return h.service.Save(ctx, ownerID, req.AccountID, req.TargetURL)
	}, func() string { return req.AccountID })
}

func (h *EngagementHandler) Follow(w http.ResponseWriter, r *http.Request) {
	var req FollowRequest
	h.handle(w, r, &req, func(ctx context.Context, ownerID string) (*models.Engagement, error) {
		return h.service.Follow(ctx, ownerID, req.AccountID, req.TargetUsername)
	}, func() string { return req.AccountID })
}

// List returns engagements across the caller's accounts
func (h *EngagementHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	page, err := pkghttp.ParsePagination(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	engagements, err := h.service.List(r.Context(), user.ID, page.Skip, page.Limit)
	if err != nil {
		writeServiceError(w, h.logger, err, accountNotFound)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, mapSlice(engagements, engagementModelToResponse))
}

// handle decodes and validates req, then runs the engagement.
// accountID is read after decoding.
func (h *EngagementHandler) handle(w http.ResponseWriter, r *http.Request, req any, run func(ctx context.Context, ownerID string) (*models.Engagement, error), accountID func() string) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		writeRequestError(w, err)
		return
	}

	if _, ok := pathID(w, accountID(), accountNotFound); !ok {
		return
	}

	engagement, err := run(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, h.logger, err, accountNotFound)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, engagementModelToResponse(engagement))
}
