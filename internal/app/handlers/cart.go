package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/autoparts-shop/internal/domain/models"
	"github.com/linemk/autoparts-shop/internal/service"
)

// CartAddRequest — входной JSON для добавления товара в корзину.
// Количество по умолчанию — 1.
type CartAddRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// CartRemoveRequest — входной JSON для удаления товара из корзины.
type CartRemoveRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
}

// CartUpdateRequest — входной JSON для изменения количества.
// Количество <= 0 удаляет позицию.
type CartUpdateRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// CartResponse — ответ всех мутаций корзины.
type CartResponse struct {
	Message string       `json:"message"`
	Cart    *models.Cart `json:"cart"`
}

// AddToCartHandler обрабатывает запрос POST /api/cart/add
func AddToCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddToCartHandler"
		logger := log.With(slog.String("op", op))

		var req CartAddRequest
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
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		cart, err := cartService.AddItem(r.Context(), req.SessionID, req.ProductID, req.Quantity)
		if err != nil {
			logger.Warn("failed to add item to cart", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		respondJSON(w, logger, CartResponse{Message: "Item added to cart", Cart: cart})
	}
}

// GetCartHandler обрабатывает запрос GET /api/cart/{session_id}
func GetCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		sessionID := chi.URLParam(r, "session_id")
		if sessionID == "" {
			logger.Error("session_id parameter is missing")
			http.Error(w, "session_id parameter is required", http.StatusBadRequest)
			return
		}

		cart, err := cartService.GetCart(r.Context(), sessionID)
		if err != nil {
			logger.Error("failed to get cart", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		respondJSON(w, logger, cart)
	}
}

// RemoveFromCartHandler обрабатывает запрос POST /api/cart/remove
func RemoveFromCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveFromCartHandler"
		logger := log.With(slog.String("op", op))

		var req CartRemoveRequest
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

		cart, err := cartService.RemoveItem(r.Context(), req.SessionID, req.ProductID)
		if err != nil {
			logger.Warn("failed to remove item from cart", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		respondJSON(w, logger, CartResponse{Message: "Item removed from cart", Cart: cart})
	}
}

// UpdateCartHandler обрабатывает запрос POST /api/cart/update
func UpdateCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateCartHandler"
		logger := log.With(slog.String("op", op))

		var req CartUpdateRequest
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

		cart, err := cartService.SetQuantity(r.Context(), req.SessionID, req.ProductID, req.Quantity)
		if err != nil {
			logger.Warn("failed to update cart", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		respondJSON(w, logger, CartResponse{Message: "Cart updated", Cart: cart})
	}
}
