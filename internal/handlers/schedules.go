package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/tiktok-automation/internal/models"
	"github.com/BradenHooton/tiktok-automation/internal/services"
	pkghttp "github.com/BradenHooton/tiktok-automation/pkg/http"
	"github.com/go-chi/chi/v5"
)

const (
	scheduleNotFound = "Schedule not found"

	// multipartMemory is how much of an upload is buffered in memory before spilling to disk
	multipartMemory = 32 << 20
)

// ScheduleService defines the interface for scheduled post business logic
type ScheduleService interface {
	Create(ctx context.Context, ownerID string, input services.CreateScheduleInput) (*models.Schedule, error)
	List(ctx context.Context, ownerID string, skip, limit int) ([]*models.Schedule, error)
	Get(ctx context.Context, ownerID, id string) (*models.Schedule, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// ScheduleHandler handles /schedules requests
type ScheduleHandler struct {
	service       ScheduleService
	maxUploadSize int64
	logger        *slog.Logger
}

// NewScheduleHandler creates a new ScheduleHandler. Request bodies larger
// than maxUploadSize are rejected.
func NewScheduleHandler(service ScheduleService, maxUploadSize int64, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// CreateScheduleForm holds the non-file multipart fields
type CreateScheduleForm struct {
	Caption      string `form:"caption" validate:"required"`
	ScheduleTime string `form:"schedule_time" validate:"required"`
	AccountID    string `form:"account_id" validate:"required"`
	Tags         string `form:"tags"`
}

func (h *ScheduleHandler) RegisterRoutes(router chi.Router) {
	router.Route("/schedules", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
	})
}

// Create schedules a video post from a multipart upload
//
// @Summary Schedule post
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} ScheduleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /schedules [post]
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			pkghttp.WriteRequestTooLarge(w, "Video exceeds the upload size limit")
			return
		}
		pkghttp.WriteBadRequest(w, "Invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	form := CreateScheduleForm{
		Caption:      r.FormValue("caption"),
		ScheduleTime: r.FormValue("schedule_time"),
		AccountID:    r.FormValue("account_id"),
		Tags:         r.FormValue("tags"),
	}
	if err := ValidateRequest(form); err != nil {
		writeRequestError(w, err)
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		pkghttp.WriteValidationError(w, "video", "this field is required")
		return
	}
	defer file.Close()

	var tags *string
	if form.Tags != "" {
		tags = &form.Tags
	}

	accountID, ok := pathID(w, form.AccountID, accountNotFound)
	if !ok {
		return
	}

	schedule, err := h.service.Create(r.Context(), user.ID, services.CreateScheduleInput{
		AccountID:    accountID,
		Caption:      form.Caption,
		ScheduleTime: form.ScheduleTime,
		Tags:         tags,
		Filename:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		Video:        file,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, accountNotFound)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, scheduleModelToResponse(schedule))
}

// List returns the caller's schedules
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	page, err := pkghttp.ParsePagination(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	schedules, err := h.service.List(r.Context(), user.ID, page.Skip, page.Limit)
	if err != nil {
		writeServiceError(w, h.logger, err, scheduleNotFound)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, mapSlice(schedules, scheduleModelToResponse))
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, chi.URLParam(r, "id"), scheduleNotFound)
	if !ok {
		return
	}

	schedule, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, h.logger, err, scheduleNotFound)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, scheduleModelToResponse(schedule))
}

// Delete removes a schedule and its stored video
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, chi.URLParam(r, "id"), scheduleNotFound)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, h.logger, err, scheduleNotFound)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, DetailResponse{Detail: "Schedule deleted"})
}
