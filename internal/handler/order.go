package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/clothing-store-backend/internal/order"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{
		svc:      svc,
		validate: validator.New(),
	}
}

type createOrderRequest struct {
	CustomerName        string   `json:"customerName"`
	Email               string   `json:"email" validate:"omitempty,email"`
	Phone               string   `json:"phone"`
	Address             string   `json:"address"`
	ProductID           string   `json:"productId"`
	ProductImage        []string `json:"productImage"`
	ProductTitle        string   `json:"productTitle"`
	ProductPrice        float64  `json:"productPrice"`
	Size                string   `json:"size"`
	Color               string   `json:"color"`
	Quantity            int      `json:"quantity"`
	SpecialInstructions string   `json:"specialInstructions"`
	TotalAmount         float64  `json:"totalAmount"`
	User                string   `json:"user"`
	PaymentMethod       string   `json:"paymentMethod" validate:"omitempty,oneof=cash cod online"`
	PaymentSlip         string   `json:"paymentSlip"`
}

type editOrderRequest struct {
	CustomerName        string `json:"customerName"`
	Email               string `json:"email" validate:"omitempty,email"`
	Phone               string `json:"phone"`
	Address             string `json:"address"`
	Size                string `json:"size"`
	Color               string `json:"color"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithCode(w, http.StatusBadRequest, "Invalid data format", order.CodeInvalidDataFormat)
		return
	}

	userID, ok := parseOptionalID(req.User)
	if !ok {
		respondWithCode(w, http.StatusBadRequest, "Invalid data format", order.CodeInvalidDataFormat)
		return
	}
	productID, ok := parseOptionalID(req.ProductID)
	if !ok {
		respondWithCode(w, http.StatusBadRequest, "Invalid data format", order.CodeInvalidDataFormat)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var details []string
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range vErrs {
				details = append(details, fe.Field()+" is invalid")
			}
		}
		respondWithJSON(w, http.StatusBadRequest, &order.ValidationError{
			Code:    order.CodeValidationError,
			Message: "Validation failed",
			Details: details,
		})
		return
	}

	in := order.CreateInput{
		UserID:              userID,
		ProductID:           productID,
		CustomerName:        req.CustomerName,
		Email:               req.Email,
		Phone:               req.Phone,
		Address:             req.Address,
		ProductImage:        req.ProductImage,
		ProductTitle:        req.ProductTitle,
		ProductPrice:        req.ProductPrice,
		Size:                req.Size,
		Color:               req.Color,
		Quantity:            req.Quantity,
		SpecialInstructions: req.SpecialInstructions,
		PaymentMethod:       order.PaymentMethod(req.PaymentMethod),
		PaymentSlip:         req.PaymentSlip,
		TotalAmount:         req.TotalAmount,
	}

	ord, err := h.svc.Create(r.Context(), in)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Order placed successfully",
		"order":   ord,
		"orderId": ord.ID,
	})
}

// ListOrders handles GET /orders (admin).
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := order.ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		respondWithMessage(w, http.StatusBadRequest, "Invalid status")
		return
	}

	page, err := h.svc.List(r.Context(), order.ListParams{
		Filter: filter,
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}

// GetOrderByID handles GET /orders/{id} (admin).
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	ord, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ord)
}

// UpdateOrderStatus handles PUT /orders/{id}/status (admin).
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithMessage(w, http.StatusBadRequest, "Invalid status")
		return
	}

	ord, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Order status updated",
		"order":   ord,
	})
}

// ListUserOrders handles GET /orders/user/{userId}.
func (h *OrderHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

// EditOrder handles PUT /orders/{id} (self-service).
func (h *OrderHandler) EditOrder(w http.ResponseWriter, r *http.Request) {
	var req editOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithCode(w, http.StatusBadRequest, "Invalid data format", order.CodeInvalidDataFormat)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("handler: edit payload failed validation")
		respondWithJSON(w, http.StatusBadRequest, &order.ValidationError{
			Code:    order.CodeValidationError,
			Message: "Validation error",
		})
		return
	}

	ord, err := h.svc.Edit(r.Context(), chi.URLParam(r, "id"), order.EditInput{
		CustomerName:        req.CustomerName,
		Email:               req.Email,
		Phone:               req.Phone,
		Address:             req.Address,
		Size:                req.Size,
		Color:               req.Color,
		Quantity:            req.Quantity,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Order updated successfully",
		"order":   ord,
	})
}

// CancelOrder handles PUT /orders/{id}/cancel (self-service).
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ord, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Order cancelled successfully",
		"order":   ord,
	})
}

// GetStats handles GET /orders/stats/summary (admin).
func (h *OrderHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// parseOptionalID parses a uuid reference. Absent is fine (missing-field
// checks own that case); present but malformed is not.
func parseOptionalID(raw string) (uuid.UUID, bool) {
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
