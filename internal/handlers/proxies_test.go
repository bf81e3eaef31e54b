package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/tiktok-automation/internal/models"
	"github.com/stretchr/testify/assert"
)

func adminUser() *models.User {
	user := testUser()
	user.IsAdmin = true
	return user
}

func TestProxyHandler_Create(t *testing.T) {
	service := &MockProxyService{
		CreateFunc: func(ctx context.Context, actor *models.User, address, country string) (*models.Proxy, error) {
			assert.True(t, actor.IsAdmin)
			return &models.Proxy{ID: testProxyID, Address: address, Country: country, IsActive: true}, nil
		},
	}
	handler := NewProxyHandler(service, testLogger())

	body := CreateProxyRequest{Address: "10.0.0.1:8080", Country: models.CountryKuwait}
	req := WithUser(NewTestRequest(t, http.MethodPost, "/proxies", body), adminUser())
	w := httptest.NewRecorder()

	handler.Create(w, req)

	var resp ProxyResponse
	AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, "10.0.0.1:8080", resp.Address)
	assert.True(t, resp.IsActive)
}

func TestProxyHandler_Create_Forbidden(t *testing.T) {
	handler := NewProxyHandler(&MockProxyService{}, testLogger())

	body := CreateProxyRequest{Address: "10.0.0.1:8080", Country: models.CountryKuwait}
	req := WithUser(NewTestRequest(t, http.MethodPost, "/proxies", body), testUser())
	w := httptest.NewRecorder()

	handler.Create(w, req)

	resp := AssertErrorResponse(t, w, http.StatusForbidden, "forbidden")
	assert.Equal(t, "Admin privileges required", resp.Message)
}

func TestProxyHandler_Create_InvalidAddress(t *testing.T) {
	for _, address := range []string{"10.0.0.1", "10.0.0.1:0", "10.0.0.1:65536", "proxy.example.com:8080", "[::1]:8080"} {
		t.Run(address, func(t *testing.T) {
			handler := NewProxyHandler(&MockProxyService{}, testLogger())

			body := CreateProxyRequest{Address: address, Country: models.CountryKuwait}
			req := WithUser(NewTestRequest(t, http.MethodPost, "/proxies", body), adminUser())
			w := httptest.NewRecorder()

			handler.Create(w, req)

			resp := AssertErrorResponse(t, w, http.StatusBadRequest, "validation_error")
			assert.Equal(t, "address", resp.Field)
		})
	}
}

func TestProxyHandler_List(t *testing.T) {
	service := &MockProxyService{
		ListFunc: func(ctx context.Context, skip, limit int) ([]*models.Proxy, error) {
			return []*models.Proxy{{ID: testProxyID, Address: "10.0.0.1:8080"}}, nil
		},
	}
	handler := NewProxyHandler(service, testLogger())

	req := WithUser(httptest.NewRequest(http.MethodGet, "/proxies", nil), testUser())
	w := httptest.NewRecorder()

	handler.List(w, req)

	var resp []ProxyResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Len(t, resp, 1)
}

func TestProxyHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		wantStatus int
	}{
		{"deleted", testProxyID, nil, http.StatusOK},
		{"malformed id", "abc", nil, http.StatusNotFound},
		{"missing", testProxyID, models.ErrNotFound, http.StatusNotFound},
		{"not admin", testProxyID, models.ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &MockProxyService{
				DeleteFunc: func(ctx context.Context, actor *models.User, id string) error {
					return tt.err
				},
			}
			handler := NewProxyHandler(service, testLogger())

			req := httptest.NewRequest(http.MethodDelete, "/proxies/"+tt.id, nil)
			req = WithUser(WithChiRouteContext(req, map[string]string{"id": tt.id}), adminUser())
			w := httptest.NewRecorder()

			handler.Delete(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
