package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/clothing-store-backend/internal/order"
)

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("handler: failed to write JSON response")
	}
}

func respondWithMessage(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"message": message})
}

func respondWithCode(w http.ResponseWriter, status int, message, errCode string) {
	respondWithJSON(w, status, map[string]string{"message": message, "error": errCode})
}

// respondDomainError maps a service failure onto the wire contract.
func respondDomainError(w http.ResponseWriter, err error) {
	var vErr *order.ValidationError
	if errors.As(err, &vErr) {
		respondWithJSON(w, http.StatusBadRequest, vErr)
		return
	}

	var cErr *order.ConflictError
	if errors.As(err, &cErr) {
		respondWithJSON(w, http.StatusConflict, map[string]string{"error": cErr.Error()})
		return
	}

	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		respondWithMessage(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, order.ErrInvalidID):
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid order ID format"})
	case errors.Is(err, order.ErrInvalidStatus):
		respondWithMessage(w, http.StatusBadRequest, "Invalid status")
	default:
		log.Error().Err(err).Msg("handler: unhandled service error")
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Server error",
			"error":   "SERVER_ERROR",
		})
	}
}
