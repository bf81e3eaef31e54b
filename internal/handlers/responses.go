package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/auth"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	pkghttp "github.com/BradenHooton/tiktok-automation/pkg/http"
	"github.com/google/uuid"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	IsActive  bool    `json:"is_active"`
	IsAdmin   bool    `json:"is_admin"`
	LastLogin *string `json:"last_login"`
	CreatedAt string  `json:"created_at"`
}

// TikTokAccountResponse omits the password hash
type TikTokAccountResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Country   string  `json:"country"`
	Proxy     *string `json:"proxy"`
	OwnerID   string  `json:"owner_id"`
	CreatedAt string  `json:"created_at"`
}

type ScheduleResponse struct {
	ID           string  `json:"id"`
	VideoPath    string  `json:"video_path"`
	Caption      string  `json:"caption"`
	ScheduleTime string  `json:"schedule_time"`
	Tags         *string `json:"tags"`
	Status       string  `json:"status"`
	OwnerID      string  `json:"owner_id"`
	AccountID    string  `json:"account_id"`
	CreatedAt    string  `json:"created_at"`
}

type ProxyResponse struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	Country   string `json:"country"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type EngagementResponse struct {
	ID             string  `json:"id"`
	AccountID      string  `json:"account_id"`
	EngagementType string  `json:"engagement_type"`
	TargetURL      *string `json:"target_url"`
	TargetUsername *string `json:"target_username"`
	CommentText    *string `json:"comment_text"`
	ShareType      *string `json:"share_type"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
}

// DetailResponse confirms an action that has no resource to return
type DetailResponse struct {
	Detail string `json:"detail"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func userModelToResponse(user *models.User) *UserResponse {
	resp := &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		IsActive:  user.IsActive,
		IsAdmin:   user.IsAdmin,
		CreatedAt: formatTime(user.CreatedAt),
	}
	if user.LastLogin != nil {
		lastLogin := formatTime(*user.LastLogin)
		resp.LastLogin = &lastLogin
	}
	return resp
}

func accountModelToResponse(account *models.TikTokAccount) *TikTokAccountResponse {
	return &TikTokAccountResponse{
		ID:        account.ID,
		Username:  account.Username,
		Country:   account.Country,
		Proxy:     account.Proxy,
		OwnerID:   account.OwnerID,
		CreatedAt: formatTime(account.CreatedAt),
	}
}

func scheduleModelToResponse(schedule *models.Schedule) *ScheduleResponse {
	return &ScheduleResponse{
		ID:           schedule.ID,
		VideoPath:    schedule.VideoPath,
		Caption:      schedule.Caption,
		ScheduleTime: formatTime(schedule.ScheduleTime),
		Tags:         schedule.Tags,
		Status:       schedule.Status,
		OwnerID:      schedule.OwnerID,
		AccountID:    schedule.AccountID,
		CreatedAt:    formatTime(schedule.CreatedAt),
	}
}

func proxyModelToResponse(proxy *models.Proxy) *ProxyResponse {
	return &ProxyResponse{
		ID:        proxy.ID,
		Address:   proxy.Address,
		Country:   proxy.Country,
		IsActive:  proxy.IsActive,
		CreatedAt: formatTime(proxy.CreatedAt),
	}
}

func engagementModelToResponse(e *models.Engagement) *EngagementResponse {
	return &EngagementResponse{
		ID:             e.ID,
		AccountID:      e.AccountID,
		EngagementType: e.EngagementType,
		TargetURL:      e.TargetURL,
		TargetUsername: e.TargetUsername,
		CommentText:    e.CommentText,
		ShareType:      e.ShareType,
		Status:         e.Status,
		CreatedAt:      formatTime(e.CreatedAt),
	}
}

// mapSlice converts every element with fn
func mapSlice[M any, R any](items []*M, fn func(*M) *R) []*R {
	out := make([]*R, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}

// writeServiceError maps service errors to HTTP responses.
// notFound is the message used for ErrNotFound.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error, notFound string) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		pkghttp.WriteValidationError(w, vErr.Field, vErr.Message)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, notFound)
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource already exists")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Admin privileges required")
	case errors.Is(err, models.ErrSubsystemFailure):
		logger.Error("automation subsystem error", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
	default:
		logger.Error("request failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// pathID returns the {id} URL parameter when it is a well-formed id.
// Malformed ids cannot name any record, so they are reported as not found.
func pathID(w http.ResponseWriter, id, notFound string) (string, bool) {
	if _, err := uuid.Parse(id); err != nil {
		pkghttp.WriteNotFound(w, notFound)
		return "", false
	}
	return id, true
}

// writeRequestError reports a failed ValidateRequest
func writeRequestError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		pkghttp.WriteValidationError(w, vErr.Field, vErr.Message)
		return
	}
	pkghttp.WriteBadRequest(w, err.Error())
}

// requireUser returns the authenticated user or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return nil, false
	}
	return user, true
}
