package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/linemk/autoparts-shop/internal/domain/models"
	"github.com/linemk/autoparts-shop/internal/storage"
)

// CustomerInfo — контактные данные покупателя для заказа.
type CustomerInfo struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// OrderService определяет интерфейс оформления и сопровождения заказов.
type OrderService interface {
	// PlaceOrder превращает корзину сессии в заказ, резервируя остатки.
	// userID передаётся, если покупатель был авторизован.
	PlaceOrder(ctx context.Context, info CustomerInfo, sessionID string, userID *int64) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, limit int) ([]*models.Order, error)
	ListUserOrders(ctx context.Context, userID int64) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status string) error
}

type orderService struct {
	log         *slog.Logger
	db          *sql.DB
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
	userRepo    storage.UserStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage, productRepo storage.ProductStorage, orderRepo storage.OrderStorage, userRepo storage.UserStorage) OrderService {
	return &orderService{
		log:         log,
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
	}
}

// PlaceOrder оформляет заказ одной транзакцией: чтение корзины, условное
// списание остатков по каждой позиции, вставка заказа и удаление корзины
// коммитятся атомарно. Любая ошибка откатывает всё — частичных списаний не бывает.
// Два конкурентных оформления на пересекающиеся товары сериализуются на
// условных UPDATE: при остатке N и двух корзинах по N успеет ровно одно.
// Повторное оформление той же сессии находит уже удалённую корзину и получает ErrEmptyCart.
func (s *orderService) PlaceOrder(ctx context.Context, info CustomerInfo, sessionID string, userID *int64) (*models.Order, error) {
	const op = "service.OrderService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.String("sessionID", sessionID))
	logger.Info("starting checkout transaction")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Читаем корзину внутри транзакции
	cart, err := s.cartRepo.GetCartBySessionTx(ctx, tx, sessionID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrCartNotFound) {
			logger.Warn("cart not found")
			return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
		}
		logger.Error("failed to get cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart: %w", op, err)
	}
	if len(cart.Items) == 0 {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("cart is empty")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	// Блокировки строк берутся в порядке product_id: встречные оформления
	// с пересекающимися корзинами не взаимоблокируются.
	sort.Slice(cart.Items, func(i, j int) bool {
		return cart.Items[i].ProductID < cart.Items[j].ProductID
	})

	// Резервируем остаток по каждой позиции условным списанием.
	// Проверяется текущий остаток каталога, а не снимок в корзине.
	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	var totalAmount float64
	for _, item := range cart.Items {
		if err := s.productRepo.ReserveStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			if errors.Is(err, storage.ErrInsufficientStock) || errors.Is(err, storage.ErrProductNotFound) {
				logger.Warn("stock reservation failed",
					slog.String("productID", item.ProductID), slog.Int("requested", item.Quantity))
				return nil, fmt.Errorf("%s: %w", op, &InsufficientStockError{ProductName: item.ProductName})
			}
			logger.Error("failed to reserve stock", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to reserve stock: %w", op, err)
		}

		subtotal := float64(item.Quantity) * item.ProductPrice
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.ProductPrice,
			Subtotal:    subtotal,
		})
		totalAmount += subtotal
	}

	order := &models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		CustomerName:    info.Name,
		CustomerEmail:   info.Email,
		CustomerPhone:   info.Phone,
		CustomerAddress: info.Address,
		Items:           orderItems,
		TotalAmount:     totalAmount,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
	}

	if err := s.orderRepo.CreateOrderTx(ctx, tx, order); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	// Успешное оформление уничтожает корзину: повторный checkout той же сессии
	// упрётся в пустую корзину, дубликата заказа не будет
	if err := s.cartRepo.DeleteCartBySessionTx(ctx, tx, sessionID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to delete cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to delete cart: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("checkout completed successfully",
		slog.String("orderID", order.ID), slog.Float64("total", order.TotalAmount))
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	const op = "service.OrderService.GetOrder"

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, limit int) ([]*models.Order, error) {
	const op = "service.OrderService.ListOrders"

	if limit <= 0 {
		limit = 100
	}
	orders, err := s.orderRepo.ListOrders(ctx, limit)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.ListUserOrders"

	// userID приходит из токена: пользователь мог быть удалён после его выдачи
	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		s.log.Warn("user lookup failed", slog.String("op", op), slog.Int64("userID", userID), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders, err := s.orderRepo.ListOrdersByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to list user orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list user orders: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, status string) error {
	const op = "service.OrderService.UpdateStatus"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", id), slog.String("status", status))

	if !models.ValidOrderStatus(status) {
		logger.Warn("invalid status")
		return fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, id, status); err != nil {
		logger.Error("failed to update order status", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("order status updated")
	return nil
}
