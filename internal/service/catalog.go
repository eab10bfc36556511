package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/linemk/autoparts-shop/internal/domain/models"
	"github.com/linemk/autoparts-shop/internal/storage"
)

// ProductInput — данные нового товара.
type ProductInput struct {
	Name          string
	Description   string
	Price         float64
	Category      string
	StockQuantity int
	ImageBase64   *string
}

// CatalogService определяет интерфейс для работы с каталогом товаров.
type CatalogService interface {
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, category string, limit int) ([]*models.Product, error)
	UpdateProduct(ctx context.Context, id string, upd storage.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]string, error)
	// SeedSampleData заполняет пустой каталог демо-товарами.
	// Возвращает false, если каталог уже не пуст.
	SeedSampleData(ctx context.Context) (bool, error)
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage) CatalogService {
	return &catalogService{
		log:         log,
		productRepo: productRepo,
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	const op = "service.CatalogService.CreateProduct"
	logger := s.log.With(slog.String("op", op), slog.String("name", in.Name))

	product := &models.Product{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		Category:      in.Category,
		StockQuantity: in.StockQuantity,
		ImageBase64:   in.ImageBase64,
	}
	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create product: %w", op, err)
	}

	logger.Info("product created", slog.String("productID", product.ID))
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	const op = "service.CatalogService.GetProduct"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, category string, limit int) ([]*models.Product, error) {
	const op = "service.CatalogService.ListProducts"

	if limit <= 0 {
		limit = 50
	}
	products, err := s.productRepo.ListProducts(ctx, category, limit)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list products: %w", op, err)
	}
	return products, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id string, upd storage.ProductUpdate) (*models.Product, error) {
	const op = "service.CatalogService.UpdateProduct"

	product, err := s.productRepo.UpdateProduct(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("product updated", slog.String("op", op), slog.String("productID", id))
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	const op = "service.CatalogService.DeleteProduct"

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("product deleted", slog.String("op", op), slog.String("productID", id))
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]string, error) {
	const op = "service.CatalogService.ListCategories"

	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list categories: %w", op, err)
	}
	return categories, nil
}

func (s *catalogService) SeedSampleData(ctx context.Context) (bool, error) {
	const op = "service.CatalogService.SeedSampleData"
	logger := s.log.With(slog.String("op", op))

	count, err := s.productRepo.CountProducts(ctx)
	if err != nil {
		logger.Error("failed to count products", slog.Any("error", err))
		return false, fmt.Errorf("%s: failed to count products: %w", op, err)
	}
	if count > 0 {
		logger.Info("sample data already exists", slog.Int("count", count))
		return false, nil
	}

	for _, in := range sampleProducts {
		if _, err := s.CreateProduct(ctx, in); err != nil {
			return false, fmt.Errorf("%s: failed to seed product: %w", op, err)
		}
	}
	logger.Info("sample data initialized", slog.Int("count", len(sampleProducts)))
	return true, nil
}

func strPtr(s string) *string { return &s }

// Демо-каталог автозапчастей для пустой базы
var sampleProducts = []ProductInput{
	{
		Name:          "Premium Brake Pads Set",
		Description:   "High-performance ceramic brake pads for enhanced stopping power and durability. Compatible with most vehicle models.",
		Price:         89.99,
		Category:      "Brakes",
		StockQuantity: 25,
		ImageBase64:   strPtr("https://images.pexels.com/photos/3642618/pexels-photo-3642618.jpeg"),
	},
	{
		Name:          "Heavy Duty Car Battery",
		Description:   "Long-lasting 12V car battery with 3-year warranty. Perfect for all weather conditions.",
		Price:         129.99,
		Category:      "Electrical",
		StockQuantity: 15,
		ImageBase64:   strPtr("https://images.pexels.com/photos/4374843/pexels-photo-4374843.jpeg"),
	},
	{
		Name:          "High-Performance Air Filter",
		Description:   "Premium air filter for improved engine performance and fuel efficiency.",
		Price:         34.99,
		Category:      "Engine",
		StockQuantity: 40,
		ImageBase64:   strPtr("https://images.unsplash.com/photo-1663642775693-6628f65358be"),
	},
	{
		Name:          "Engine Oil 5W-30",
		Description:   "Synthetic motor oil for optimal engine protection and performance.",
		Price:         45.99,
		Category:      "Engine",
		StockQuantity: 30,
		ImageBase64:   strPtr("https://images.pexels.com/photos/7565172/pexels-photo-7565172.jpeg"),
	},
	{
		Name:          "Alloy Wheel Set",
		Description:   "Lightweight alloy wheels for enhanced performance and style.",
		Price:         299.99,
		Category:      "Wheels",
		StockQuantity: 8,
		ImageBase64:   strPtr("https://images.pexels.com/photos/9846151/pexels-photo-9846151.jpeg"),
	},
	{
		Name:          "Spark Plugs Set (4-pack)",
		Description:   "Iridium spark plugs for reliable ignition and improved fuel economy.",
		Price:         29.99,
		Category:      "Engine",
		StockQuantity: 50,
		ImageBase64:   strPtr("https://images.pexels.com/photos/3642618/pexels-photo-3642618.jpeg"),
	},
}
