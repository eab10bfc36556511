package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/autoparts-shop/internal/payment/momo"
	"github.com/linemk/autoparts-shop/internal/service"
	"github.com/linemk/autoparts-shop/internal/storage"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, logger *slog.Logger, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// handleServiceError переводит ошибки сервисного слоя в HTTP-статусы:
// бизнес-ошибки — 400, отсутствующие сущности — 404, отказ провайдера — 502,
// всё неожиданное — 500 без деталей.
func handleServiceError(w http.ResponseWriter, err error) {
	var stockErr *service.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		http.Error(w, stockErr.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrEmptyCart):
		http.Error(w, "cart is empty", http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidStatus):
		http.Error(w, "invalid status", http.StatusBadRequest)
	case errors.Is(err, service.ErrPaymentNotPending):
		http.Error(w, "order is not awaiting payment", http.StatusBadRequest)
	case errors.Is(err, storage.ErrProductNotFound):
		http.Error(w, "product not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrCartNotFound):
		http.Error(w, "cart not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrOrderNotFound):
		http.Error(w, "order not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, momo.ErrProvider):
		http.Error(w, "payment provider unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
