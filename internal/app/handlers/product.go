package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/autoparts-shop/internal/domain/models"
	"github.com/linemk/autoparts-shop/internal/service"
	"github.com/linemk/autoparts-shop/internal/storage"
)

// ProductRequest — входной JSON для создания товара.
type ProductRequest struct {
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description" validate:"required"`
	Price         float64 `json:"price" validate:"gte=0"`
	Category      string  `json:"category" validate:"required"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0"`
	ImageBase64   *string `json:"image_base64,omitempty"`
}

// ProductUpdateRequest — частичное обновление товара, nil-поля не меняются.
type ProductUpdateRequest struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Category      *string  `json:"category,omitempty"`
	StockQuantity *int     `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	ImageBase64   *string  `json:"image_base64,omitempty"`
}

// CreateProductHandler обрабатывает запрос POST /api/products
func CreateProductHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		var req ProductRequest
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

		product, err := catalogService.CreateProduct(r.Context(), service.ProductInput{
			Name:          req.Name,
			Description:   req.Description,
			Price:         req.Price,
			Category:      req.Category,
			StockQuantity: req.StockQuantity,
			ImageBase64:   req.ImageBase64,
		})
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		respondJSON(w, logger, product)
	}
}

// ListProductsHandler обрабатывает запрос GET /api/products?category=&limit=
func ListProductsHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		category := r.URL.Query().Get("category")
		limit := 50
		if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
			parsed, err := strconv.Atoi(rawLimit)
			if err != nil || parsed <= 0 {
				logger.Error("invalid limit parameter", slog.String("limit", rawLimit))
				http.Error(w, "invalid limit parameter", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		products, err := catalogService.ListProducts(r.Context(), category, limit)
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}
		if products == nil {
			products = []*models.Product{}
		}

		respondJSON(w, logger, products)
	}
}

// GetProductHandler обрабатывает запрос GET /api/products/{id}
func GetProductHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		product, err := catalogService.GetProduct(r.Context(), id)
		if err != nil {
			logger.Warn("failed to get product", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		respondJSON(w, logger, product)
	}
}

// UpdateProductHandler обрабатывает запрос PUT /api/products/{id}
func UpdateProductHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")

		var req ProductUpdateRequest
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

		product, err := catalogService.UpdateProduct(r.Context(), id, storage.ProductUpdate{
			Name:          req.Name,
			Description:   req.Description,
			Price:         req.Price,
			Category:      req.Category,
			StockQuantity: req.StockQuantity,
			ImageBase64:   req.ImageBase64,
		})
		if err != nil {
			logger.Warn("failed to update product", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		respondJSON(w, logger, product)
	}
}

// DeleteProductHandler обрабатывает запрос DELETE /api/products/{id}
func DeleteProductHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if err := catalogService.DeleteProduct(r.Context(), id); err != nil {
			logger.Warn("failed to delete product", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		respondJSON(w, logger, map[string]string{"message": "Product deleted successfully"})
	}
}

// CategoriesHandler обрабатывает запрос GET /api/categories
func CategoriesHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CategoriesHandler"
		logger := log.With(slog.String("op", op))

		categories, err := catalogService.ListCategories(r.Context())
		if err != nil {
			logger.Error("failed to list categories", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}
		if categories == nil {
			categories = []string{}
		}

		respondJSON(w, logger, map[string][]string{"categories": categories})
	}
}

// InitSampleDataHandler обрабатывает запрос POST /api/init-sample-data
func InitSampleDataHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.InitSampleDataHandler"
		logger := log.With(slog.String("op", op))

		seeded, err := catalogService.SeedSampleData(r.Context())
		if err != nil {
			logger.Error("failed to seed sample data", slog.Any("error", err))
			handleServiceError(w, err)
			return
		}

		message := "Sample data initialized successfully"
		if !seeded {
			message = "Sample data already exists"
		}
		respondJSON(w, logger, map[string]string{"message": message})
	}
}
