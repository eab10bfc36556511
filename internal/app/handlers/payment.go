package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/autoparts-shop/internal/service"
)

// PayOrderRequest — входной JSON инициации оплаты заказа.
type PayOrderRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
}

// PaymentCallbackRequest — уведомление платёжного провайдера.
type PaymentCallbackRequest struct {
	Reference string `json:"reference" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// PayOrderHandler обрабатывает запрос POST /api/orders/{id}/pay
func PayOrderHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PayOrderHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")

		var req PayOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		result, err := paymentService.InitiatePayment(r.Context(), id, req.PhoneNumber)
		if err != nil {
			logger.Error("failed to initiate payment", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		respondJSON(w, logger, result)
	}
}

// PaymentCallbackHandler обрабатывает запрос POST /api/payments/callback.
// Уведомление только журналируется: переход статусов заказа по callback
// ещё не определён продуктом, поэтому заказ здесь не меняется.
func PaymentCallbackHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PaymentCallbackHandler"
		logger := log.With(slog.String("op", op))

		rawPayload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			logger.Error("failed to read body", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		var req PaymentCallbackRequest
		if err := json.NewDecoder(bytes.NewReader(rawPayload)).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		if err := paymentService.RecordCallback(r.Context(), req.Reference, req.Status, rawPayload); err != nil {
			logger.Error("failed to record callback", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		respondJSON(w, logger, map[string]string{"message": "Notification recorded"})
	}
}
