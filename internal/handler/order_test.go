package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/clothing-store-backend/internal/order"
)

type mockOrderService struct {
	createFunc     func(ctx context.Context, in order.CreateInput) (*order.Order, error)
	getByIDFunc    func(ctx context.Context, id string) (*order.Order, error)
	listByUserFunc func(ctx context.Context, userID string) ([]order.Order, error)
	listFunc       func(ctx context.Context, params order.ListParams) (*order.Page, error)
	setStatusFunc  func(ctx context.Context, id, rawStatus string) (*order.Order, error)
	editFunc       func(ctx context.Context, id string, in order.EditInput) (*order.Order, error)
	cancelFunc     func(ctx context.Context, id string) (*order.Order, error)
	statsFunc      func(ctx context.Context) (*order.Stats, error)
}

func (m *mockOrderService) Create(ctx context.Context, in order.CreateInput) (*order.Order, error) {
	return m.createFunc(ctx, in)
}

func (m *mockOrderService) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOrderService) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockOrderService) List(ctx context.Context, params order.ListParams) (*order.Page, error) {
	return m.listFunc(ctx, params)
}

func (m *mockOrderService) SetStatus(ctx context.Context, id, rawStatus string) (*order.Order, error) {
	return m.setStatusFunc(ctx, id, rawStatus)
}

func (m *mockOrderService) Edit(ctx context.Context, id string, in order.EditInput) (*order.Order, error) {
	return m.editFunc(ctx, id, in)
}

func (m *mockOrderService) Cancel(ctx context.Context, id string) (*order.Order, error) {
	return m.cancelFunc(ctx, id)
}

func (m *mockOrderService) Stats(ctx context.Context) (*order.Stats, error) {
	return m.statsFunc(ctx)
}

func newTestRouter(svc order.Service) *chi.Mux {
	h := NewOrderHandler(svc)
	r := chi.NewRouter()
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/stats/summary", h.GetStats)
	r.Get("/orders/user/{userId}", h.ListUserOrders)
	r.Get("/orders/{id}", h.GetOrderByID)
	r.Put("/orders/{id}/status", h.UpdateOrderStatus)
	r.Put("/orders/{id}", h.EditOrder)
	r.Put("/orders/{id}/cancel", h.CancelOrder)
	return r
}

const createBody = `{
	"customerName": "Nimal Perera",
	"email": "nimal@example.com",
	"phone": "0771234567",
	"address": "12 Galle Road, Colombo",
	"productId": "550e8400-e29b-41d4-a716-446655440000",
	"productTitle": "Linen Shirt",
	"productPrice": 500,
	"size": "M",
	"color": "white",
	"quantity": 2,
	"totalAmount": 1000,
	"user": "123e4567-e89b-12d3-a456-426614174000",
	"paymentMethod": "cod"
}`

func TestOrderHandler_CreateOrder(t *testing.T) {
	orderID := uuid.Must(uuid.FromString("9f3c1f1e-5f2a-4d0e-9d6a-0b3a2f1c4d5e"))

	tests := []struct {
		name           string
		body           string
		createFunc     func(ctx context.Context, in order.CreateInput) (*order.Order, error)
		expectedStatus int
		expectedInBody []string
	}{
		{
			name: "success",
			body: createBody,
			createFunc: func(ctx context.Context, in order.CreateInput) (*order.Order, error) {
				assert.Equal(t, 1000.0, in.TotalAmount)
				return &order.Order{ID: orderID, TotalAmount: in.TotalAmount, Status: order.StatusPending}, nil
			},
			expectedStatus: http.StatusCreated,
			expectedInBody: []string{"Order placed successfully", orderID.String()},
		},
		{
			name: "payment_slip_required",
			body: strings.Replace(createBody, `"paymentMethod": "cod"`, `"paymentMethod": "online"`, 1),
			createFunc: func(ctx context.Context, in order.CreateInput) (*order.Order, error) {
				return nil, &order.ValidationError{
					Code:    order.CodePaymentSlipRequired,
					Message: "Payment slip is required for online payments.",
				}
			},
			expectedStatus: http.StatusBadRequest,
			expectedInBody: []string{order.CodePaymentSlipRequired},
		},
		{
			name:           "malformed_json",
			body:           `{"customerName": `,
			createFunc:     nil,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: []string{order.CodeInvalidDataFormat},
		},
		{
			name:           "malformed_user_reference",
			body:           strings.Replace(createBody, "123e4567-e89b-12d3-a456-426614174000", "not-a-uuid", 1),
			createFunc:     nil,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: []string{order.CodeInvalidDataFormat},
		},
		{
			name:           "invalid_email_format",
			body:           strings.Replace(createBody, "nimal@example.com", "not-an-email", 1),
			createFunc:     nil,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: []string{order.CodeValidationError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{createFunc: tt.createFunc}
			router := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			for _, want := range tt.expectedInBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestOrderHandler_ListOrders(t *testing.T) {
	svc := &mockOrderService{
		listFunc: func(ctx context.Context, params order.ListParams) (*order.Page, error) {
			assert.Equal(t, 2, params.Page)
			assert.Equal(t, 10, params.Limit)
			status, restricted := params.Filter.Status()
			assert.True(t, restricted)
			assert.Equal(t, order.StatusPending, status)

			return &order.Page{
				Orders:      []order.Order{},
				TotalPages:  5,
				CurrentPage: 2,
				Total:       45,
			}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders?status=pending&page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Orders      []json.RawMessage `json:"orders"`
		TotalPages  int               `json:"totalPages"`
		CurrentPage int               `json:"currentPage"`
		Total       int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 5, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 45, page.Total)
}

func TestOrderHandler_ListOrders_UnknownStatus(t *testing.T) {
	router := newTestRouter(&mockOrderService{})

	req := httptest.NewRequest(http.MethodGet, "/orders?status=refunded", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid status")
}

func TestOrderHandler_GetOrderByID_NotFound(t *testing.T) {
	svc := &mockOrderService{
		getByIDFunc: func(ctx context.Context, id string) (*order.Order, error) {
			return nil, order.ErrOrderNotFound
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/9f3c1f1e-5f2a-4d0e-9d6a-0b3a2f1c4d5e", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Order not found")
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setStatusFunc  func(ctx context.Context, id, rawStatus string) (*order.Order, error)
		expectedStatus int
		expectedInBody string
	}{
		{
			name: "pending_straight_to_delivered",
			body: `{"status": "delivered"}`,
			setStatusFunc: func(ctx context.Context, id, rawStatus string) (*order.Order, error) {
				return &order.Order{Status: order.OrderStatus(rawStatus)}, nil
			},
			expectedStatus: http.StatusOK,
			expectedInBody: "Order status updated",
		},
		{
			name: "unknown_status",
			body: `{"status": "refunded"}`,
			setStatusFunc: func(ctx context.Context, id, rawStatus string) (*order.Order, error) {
				return nil, order.ErrInvalidStatus
			},
			expectedStatus: http.StatusBadRequest,
			expectedInBody: "Invalid status",
		},
		{
			name: "missing_order",
			body: `{"status": "confirmed"}`,
			setStatusFunc: func(ctx context.Context, id, rawStatus string) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedInBody: "Order not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{setStatusFunc: tt.setStatusFunc}
			router := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodPut, "/orders/9f3c1f1e-5f2a-4d0e-9d6a-0b3a2f1c4d5e/status", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedInBody)
		})
	}
}

func TestOrderHandler_CancelOrder_ConflictEchoesStatus(t *testing.T) {
	svc := &mockOrderService{
		cancelFunc: func(ctx context.Context, id string) (*order.Order, error) {
			return nil, &order.ConflictError{Op: "cancelled", CurrentStatus: order.StatusDelivered}
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/orders/9f3c1f1e-5f2a-4d0e-9d6a-0b3a2f1c4d5e/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "delivered")
}

func TestOrderHandler_EditOrder_Conflict(t *testing.T) {
	svc := &mockOrderService{
		editFunc: func(ctx context.Context, id string, in order.EditInput) (*order.Order, error) {
			return nil, &order.ConflictError{Op: "updated", CurrentStatus: order.StatusShipped}
		},
	}
	router := newTestRouter(svc)

	body := `{"customerName":"a","email":"a@b.lk","phone":"077","address":"x","size":"M","color":"white","quantity":1}`
	req := httptest.NewRequest(http.MethodPut, "/orders/9f3c1f1e-5f2a-4d0e-9d6a-0b3a2f1c4d5e", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "shipped")
}

func TestOrderHandler_GetStats(t *testing.T) {
	svc := &mockOrderService{
		statsFunc: func(ctx context.Context) (*order.Stats, error) {
			return &order.Stats{
				TotalOrders:     12,
				PendingOrders:   5,
				CompletedOrders: 4,
				TotalRevenue:    18500,
				RecentOrders:    []order.Order{},
			}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/stats/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats order.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 12, stats.TotalOrders)
	assert.Equal(t, 18500.0, stats.TotalRevenue)
}

func TestOrderHandler_ListUserOrders(t *testing.T) {
	svc := &mockOrderService{
		listByUserFunc: func(ctx context.Context, userID string) ([]order.Order, error) {
			assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", userID)
			return []order.Order{}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/user/123e4567-e89b-12d3-a456-426614174000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
