package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/auth"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	"github.com/BradenHooton/tiktok-automation/internal/services"
	pkghttp "github.com/BradenHooton/tiktok-automation/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccountID  = "0b5b7f3e-8a53-4c8e-9d38-3f6a4f1d2c11"
	testScheduleID = "6f1c2d47-2a8e-4b17-a3c5-92d0e6b4f801"
	testProxyID    = "c2a9e7d4-5b61-4f0a-8e3d-1a7b9c6d4e22"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func testUser() *models.User {
	return &models.User{
		ID:        "8d7e6f5a-4b3c-4d2e-9f1a-0b9c8d7e6f5a",
		Username:  "alice",
		Email:     "alice@x.com",
		IsActive:  true,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// WithUser adds an authenticated user to the request context
func WithUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), user))
}

// WithChiRouteContext sets URL parameters the way the router would
func WithChiRouteContext(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc    func(ctx context.Context, handle, password string) (*models.TokenResponse, error)
	RegisterFunc func(ctx context.Context, username, email, password string) (*models.User, error)
}

func (m *MockAuthService) Login(ctx context.Context, handle, password string) (*models.TokenResponse, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrInvalidCredentials
	}
	return m.LoginFunc(ctx, handle, password)
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrConflict
	}
	return m.RegisterFunc(ctx, username, email, password)
}

// MockUserService implements UserService for testing
type MockUserService struct {
	DeleteAccountFunc func(ctx context.Context, userID string) error
}

func (m *MockUserService) DeleteAccount(ctx context.Context, userID string) error {
	if m.DeleteAccountFunc == nil {
		return nil
	}
	return m.DeleteAccountFunc(ctx, userID)
}

// MockTikTokAccountService implements TikTokAccountService for testing
type MockTikTokAccountService struct {
	CreateFunc func(ctx context.Context, ownerID string, input services.CreateTikTokAccountInput) (*models.TikTokAccount, error)
	ListFunc   func(ctx context.Context, ownerID string, skip, limit int) ([]*models.TikTokAccount, error)
	GetFunc    func(ctx context.Context, ownerID, id string) (*models.TikTokAccount, error)
	DeleteFunc func(ctx context.Context, ownerID, id string) error
}

func (m *MockTikTokAccountService) Create(ctx context.Context, ownerID string, input services.CreateTikTokAccountInput) (*models.TikTokAccount, error) {
	if m.CreateFunc == nil {
		return &models.TikTokAccount{ID: testAccountID, Username: input.Username, Country: input.Country, Proxy: input.Proxy, OwnerID: ownerID}, nil
	}
	return m.CreateFunc(ctx, ownerID, input)
}

func (m *MockTikTokAccountService) List(ctx context.Context, ownerID string, skip, limit int) ([]*models.TikTokAccount, error) {
	if m.ListFunc == nil {
		return []*models.TikTokAccount{}, nil
	}
	return m.ListFunc(ctx, ownerID, skip, limit)
}

func (m *MockTikTokAccountService) Get(ctx context.Context, ownerID, id string) (*models.TikTokAccount, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, ownerID, id)
}

func (m *MockTikTokAccountService) Delete(ctx context.Context, ownerID, id string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, ownerID, id)
}

// MockScheduleService implements ScheduleService for testing
type MockScheduleService struct {
	CreateFunc func(ctx context.Context, ownerID string, input services.CreateScheduleInput) (*models.Schedule, error)
	ListFunc   func(ctx context.Context, ownerID string, skip, limit int) ([]*models.Schedule, error)
	GetFunc    func(ctx context.Context, ownerID, id string) (*models.Schedule, error)
	DeleteFunc func(ctx context.Context, ownerID, id string) error
}

func (m *MockScheduleService) Create(ctx context.Context, ownerID string, input services.CreateScheduleInput) (*models.Schedule, error) {
	if m.CreateFunc == nil {
		return &models.Schedule{ID: testScheduleID, Caption: input.Caption, OwnerID: ownerID, AccountID: input.AccountID, Status: models.StatusPending}, nil
	}
	return m.CreateFunc(ctx, ownerID, input)
}

func (m *MockScheduleService) List(ctx context.Context, ownerID string, skip, limit int) ([]*models.Schedule, error) {
	if m.ListFunc == nil {
		return []*models.Schedule{}, nil
	}
	return m.ListFunc(ctx, ownerID, skip, limit)
}

func (m *MockScheduleService) Get(ctx context.Context, ownerID, id string) (*models.Schedule, error) {
	if m.GetFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetFunc(ctx, ownerID, id)
}

func (m *MockScheduleService) Delete(ctx context.Context, ownerID, id string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, ownerID, id)
}

// MockProxyService implements ProxyService for testing
type MockProxyService struct {
	CreateFunc func(ctx context.Context, actor *models.User, address, country string) (*models.Proxy, error)
	ListFunc   func(ctx context.Context, skip, limit int) ([]*models.Proxy, error)
	DeleteFunc func(ctx context.Context, actor *models.User, id string) error
}

func (m *MockProxyService) Create(ctx context.Context, actor *models.User, address, country string) (*models.Proxy, error) {
	if m.CreateFunc == nil {
		return nil, models.ErrForbidden
	}
	return m.CreateFunc(ctx, actor, address, country)
}

func (m *MockProxyService) List(ctx context.Context, skip, limit int) ([]*models.Proxy, error) {
	if m.ListFunc == nil {
		return []*models.Proxy{}, nil
	}
	return m.ListFunc(ctx, skip, limit)
}

func (m *MockProxyService) Delete(ctx context.Context, actor *models.User, id string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, actor, id)
}

// MockEngagementService implements EngagementService for testing.
// Unset funcs return a pending engagement of the matching type.
type MockEngagementService struct {
	LikeFunc    func(ctx context.Context, ownerID, accountID, url string) (*models.Engagement, error)
	CommentFunc func(ctx context.Context, ownerID, accountID, url, text string) (*models.Engagement, error)
	ShareFunc   func(ctx context.Context, ownerID, accountID, url, mode string) (*models.Engagement, error)
	SaveFunc    func(ctx context.Context, ownerID, accountID, url string) (*models.Engagement, error)
	FollowFunc  func(ctx context.Context, ownerID, accountID, target string) (*models.Engagement, error)
	ListFunc    func(ctx context.Context, ownerID string, skip, limit int) ([]*models.Engagement, error)
}

func pendingEngagement(accountID, kind string) *models.Engagement {
	return &models.Engagement{ID: "engagement-1", AccountID: accountID, EngagementType: kind, Status: models.StatusPending}
}

func (m *MockEngagementService) Like(ctx context.Context, ownerID, accountID, url string) (*models.Engagement, error) {
	if m.LikeFunc == nil {
		return pendingEngagement(accountID, models.EngagementLike), nil
	}
	return m.LikeFunc(ctx, ownerID, accountID, url)
}

func (m *MockEngagementService) Comment(ctx context.Context, ownerID, accountID, url, text string) (*models.Engagement, error) {
	if m.CommentFunc == nil {
		return pendingEngagement(accountID, models.EngagementComment), nil
	}
	return m.CommentFunc(ctx, ownerID, accountID, url, text)
}

func (m *MockEngagementService) Share(ctx context.Context, ownerID, accountID, url, mode string) (*models.Engagement, error) {
	if m.ShareFunc == nil {
		return pendingEngagement(accountID, models.EngagementShare), nil
	}
	return m.ShareFunc(ctx, ownerID, accountID, url, mode)
}

func (m *MockEngagementService) Save(ctx context.Context, ownerID, accountID, url string) (*models.Engagement, error) {
	if m.SaveFunc == nil {
		return pendingEngagement(accountID, models.EngagementSave), nil
	}
	return m.SaveFunc(ctx, ownerID, accountID, url)
}

func (m *MockEngagementService) Follow(ctx context.Context, ownerID, accountID, target string) (*models.Engagement, error) {
	if m.FollowFunc == nil {
		return pendingEngagement(accountID, models.EngagementFollow), nil
	}
	return m.FollowFunc(ctx, ownerID, accountID, target)
}

func (m *MockEngagementService) List(ctx context.Context, ownerID string, skip, limit int) ([]*models.Engagement, error) {
	if m.ListFunc == nil {
		return []*models.Engagement{}, nil
	}
	return m.ListFunc(ctx, ownerID, skip, limit)
}

// MockPinger implements Pinger for testing
type MockPinger struct {
	Err error
}

func (m *MockPinger) HealthCheck(ctx context.Context) error {
	return m.Err
}
