package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/linemk/autoparts-shop/internal/domain/models"
	"github.com/linemk/autoparts-shop/internal/storage"
)

// CartService определяет интерфейс для работы с корзиной сессии.
type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*models.Cart, error)
	AddItem(ctx context.Context, sessionID, productID string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*models.Cart, error)
	// SetQuantity выставляет количество позиции; значение <= 0 удаляет позицию.
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*models.Cart, error)
}

type cartService struct {
	log         *slog.Logger
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage, productRepo storage.ProductStorage) CartService {
	return &cartService{
		log:         log,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart возвращает корзину сессии; отсутствующая корзина — это пустая корзина, а не ошибка.
func (s *cartService) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	const op = "service.CartService.GetCart"

	cart, err := s.cartRepo.GetCartBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrCartNotFound) {
			return &models.Cart{SessionID: sessionID, Items: []models.CartItem{}}, nil
		}
		return nil, fmt.Errorf("%s: failed to get cart: %w", op, err)
	}
	return cart, nil
}

// AddItem добавляет товар в корзину: по повторному product_id количество складывается,
// название/цена/картинка снимаются с товара на момент добавления.
func (s *cartService) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*models.Cart, error) {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.String("sessionID", sessionID), slog.String("productID", productID))

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		logger.Warn("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if product.StockQuantity < quantity {
		logger.Warn("insufficient stock", slog.Int("stock", product.StockQuantity), slog.Int("requested", quantity))
		return nil, fmt.Errorf("%s: %w", op, &InsufficientStockError{ProductName: product.Name})
	}

	cart, err := s.loadOrCreateCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:    productID,
			Quantity:     quantity,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			ProductImage: product.ImageBase64,
		})
	}

	if err := s.saveCart(ctx, cart); err != nil {
		logger.Error("failed to save cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("item added to cart", slog.Float64("total", cart.TotalAmount))
	return cart, nil
}

// RemoveItem удаляет позицию из корзины.
func (s *cartService) RemoveItem(ctx context.Context, sessionID, productID string) (*models.Cart, error) {
	const op = "service.CartService.RemoveItem"
	logger := s.log.With(slog.String("op", op), slog.String("sessionID", sessionID), slog.String("productID", productID))

	cart, err := s.cartRepo.GetCartBySession(ctx, sessionID)
	if err != nil {
		logger.Warn("failed to get cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	filtered := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}
	cart.Items = filtered

	if err := s.saveCart(ctx, cart); err != nil {
		logger.Error("failed to save cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("item removed from cart", slog.Float64("total", cart.TotalAmount))
	return cart, nil
}

// SetQuantity выставляет количество позиции в корзине. Остаток перепроверяется
// по каталогу, но снимок цены не обновляется.
func (s *cartService) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*models.Cart, error) {
	const op = "service.CartService.SetQuantity"
	logger := s.log.With(slog.String("op", op), slog.String("sessionID", sessionID), slog.String("productID", productID))

	if quantity <= 0 {
		return s.RemoveItem(ctx, sessionID, productID)
	}

	cart, err := s.cartRepo.GetCartBySession(ctx, sessionID)
	if err != nil {
		logger.Warn("failed to get cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil && !errors.Is(err, storage.ErrProductNotFound) {
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}
	if product != nil && product.StockQuantity < quantity {
		logger.Warn("insufficient stock", slog.Int("stock", product.StockQuantity), slog.Int("requested", quantity))
		return nil, fmt.Errorf("%s: %w", op, &InsufficientStockError{ProductName: product.Name})
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			break
		}
	}

	if err := s.saveCart(ctx, cart); err != nil {
		logger.Error("failed to save cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("cart updated", slog.Float64("total", cart.TotalAmount))
	return cart, nil
}

func (s *cartService) loadOrCreateCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetCartBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrCartNotFound) {
			return &models.Cart{ID: uuid.NewString(), SessionID: sessionID}, nil
		}
		return nil, err
	}
	return cart, nil
}

// saveCart пересчитывает сумму по текущим позициям и сохраняет корзину.
// Сумма никогда не корректируется инкрементально.
func (s *cartService) saveCart(ctx context.Context, cart *models.Cart) error {
	cart.TotalAmount = cart.Total()
	return s.cartRepo.UpsertCart(ctx, cart)
}
