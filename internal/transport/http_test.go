package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/clothing-store-backend/internal/auth"
	"github.com/vasiliy-maslov/clothing-store-backend/internal/order"
	"github.com/vasiliy-maslov/clothing-store-backend/internal/transport"
)

type stubService struct{}

func (stubService) Create(context.Context, order.CreateInput) (*order.Order, error) {
	return &order.Order{}, nil
}
func (stubService) GetByID(context.Context, string) (*order.Order, error) { return &order.Order{}, nil }
func (stubService) ListByUser(context.Context, string) ([]order.Order, error) {
	return []order.Order{}, nil
}
func (stubService) List(context.Context, order.ListParams) (*order.Page, error) {
	return &order.Page{Orders: []order.Order{}, TotalPages: 0, CurrentPage: 1}, nil
}
func (stubService) SetStatus(context.Context, string, string) (*order.Order, error) {
	return &order.Order{}, nil
}
func (stubService) Edit(context.Context, string, order.EditInput) (*order.Order, error) {
	return &order.Order{}, nil
}
func (stubService) Cancel(context.Context, string) (*order.Order, error) { return &order.Order{}, nil }
func (stubService) Stats(context.Context) (*order.Stats, error)          { return &order.Stats{}, nil }

const secret = "router-test-secret"

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId":  "admin-1",
		"isAdmin": true,
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	router := transport.NewRouter(stubService{}, auth.NewJWTResolver(secret))

	adminPaths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/orders"},
		{http.MethodGet, "/orders/stats/summary"},
		{http.MethodGet, "/orders/9f3c1f1e-5f2a-4d0e-9d6a-0b3a2f1c4d5e"},
		{http.MethodPut, "/orders/9f3c1f1e-5f2a-4d0e-9d6a-0b3a2f1c4d5e/status"},
	}

	for _, route := range adminPaths {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_PublicRoutesNeedNoToken(t *testing.T) {
	router := transport.NewRouter(stubService{}, auth.NewJWTResolver(secret))

	req := httptest.NewRequest(http.MethodGet, "/orders/user/123e4567-e89b-12d3-a456-426614174000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AdminTokenPasses(t *testing.T) {
	router := transport.NewRouter(stubService{}, auth.NewJWTResolver(secret))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
