package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vasiliy-maslov/clothing-store-backend/internal/auth"
	"github.com/vasiliy-maslov/clothing-store-backend/internal/handler"
	"github.com/vasiliy-maslov/clothing-store-backend/internal/order"
)

func NewRouter(svc order.Service, resolver auth.Resolver) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	h := handler.NewOrderHandler(svc)
	admin := auth.RequireAdmin(resolver)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.With(admin).Get("/", h.ListOrders)
		r.With(admin).Get("/stats/summary", h.GetStats)
		r.Get("/user/{userId}", h.ListUserOrders)
		r.With(admin).Get("/{id}", h.GetOrderByID)
		r.With(admin).Put("/{id}/status", h.UpdateOrderStatus)
		r.Put("/{id}", h.EditOrder)
		r.Put("/{id}/cancel", h.CancelOrder)
	})

	return r
}
