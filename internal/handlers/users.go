package handlers

import (
	"context"
	"log/slog"
	"net/http"

	pkghttp "github.com/BradenHooton/tiktok-automation/pkg/http"
)

// UserService defines the interface for user business logic
type UserService interface {
	DeleteAccount(ctx context.Context, userID string) error
}

// UserHandler handles requests about the authenticated user
type UserHandler struct {
	service UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// Me returns the authenticated user
//
// @Summary Current user
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(user))
}

// DeleteMe deletes the authenticated user together with all linked
// accounts, schedules and engagements.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(r.Context(), user.ID); err != nil {
		writeServiceError(w, h.logger, err, "User not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, DetailResponse{Detail: "User deleted"})
}
