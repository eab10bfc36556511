package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/autoparts-shop/internal/domain/models"
	"github.com/linemk/autoparts-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/autoparts-shop/internal/service"
)

// OrderCreateRequest — входной JSON оформления заказа.
type OrderCreateRequest struct {
	CustomerName    string `json:"customer_name" validate:"required"`
	CustomerEmail   string `json:"customer_email" validate:"required,email"`
	CustomerPhone   string `json:"customer_phone" validate:"required"`
	CustomerAddress string `json:"customer_address" validate:"required"`
	CartSessionID   string `json:"cart_session_id" validate:"required"`
}

// OrderStatusRequest — входной JSON смены статуса заказа.
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled"`
}

// CreateOrderHandler обрабатывает запрос POST /api/orders.
// Авторизация не обязательна: если валидный токен есть, заказ привязывается к пользователю.
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		var req OrderCreateRequest
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

		var userID *int64
		if id, ok := jwtmiddleware.FromContext(r.Context()); ok {
			userID = &id
		}

		order, err := orderService.PlaceOrder(r.Context(), service.CustomerInfo{
			Name:    req.CustomerName,
			Email:   req.CustomerEmail,
			Phone:   req.CustomerPhone,
			Address: req.CustomerAddress,
		}, req.CartSessionID, userID)
		if err != nil {
			logger.Warn("failed to place order", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		respondJSON(w, logger, order)
	}
}

// ListOrdersHandler обрабатывает запрос GET /api/orders?limit=
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		limit := 100
		if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
			parsed, err := strconv.Atoi(rawLimit)
			if err != nil || parsed <= 0 {
				logger.Error("invalid limit parameter", slog.String("limit", rawLimit))
				http.Error(w, "invalid limit parameter", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		orders, err := orderService.ListOrders(r.Context(), limit)
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}

		respondJSON(w, logger, orders)
	}
}

// MyOrdersHandler обрабатывает запрос GET /api/orders/me (требуется авторизация)
func MyOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MyOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := orderService.ListUserOrders(r.Context(), userID)
		if err != nil {
			logger.Error("failed to list user orders", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}
		if orders == nil {
			orders = []*models.Order{}
		}

		respondJSON(w, logger, orders)
	}
}

// GetOrderHandler обрабатывает запрос GET /api/orders/{id}
func GetOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		order, err := orderService.GetOrder(r.Context(), id)
		if err != nil {
			logger.Warn("failed to get order", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		respondJSON(w, logger, order)
	}
}

// UpdateOrderStatusHandler обрабатывает запрос PUT /api/orders/{id}/status
func UpdateOrderStatusHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")

		var req OrderStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}

		if err := orderService.UpdateStatus(r.Context(), id, req.Status); err != nil {
			logger.Warn("failed to update order status", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		respondJSON(w, logger, map[string]string{"message": "Order status updated"})
	}
}
