package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/autoparts-shop/internal/domain/models"
	"github.com/linemk/autoparts-shop/internal/payment/momo"
	"github.com/linemk/autoparts-shop/internal/storage"
)

// ErrPaymentNotPending возвращается при попытке оплатить заказ,
// который уже оплачен или оплата которого завершилась.
var ErrPaymentNotPending = fmt.Errorf("order is not awaiting payment")

// PaymentResult — результат инициации платежа.
type PaymentResult struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Collector — исходящий вызов платёжного провайдера.
type Collector interface {
	Collect(ctx context.Context, amount float64, phoneNumber, externalReference string) (*momo.CollectResponse, error)
}

// PaymentService определяет интерфейс для работы с оплатой заказов.
type PaymentService interface {
	// InitiatePayment запускает списание с мобильного кошелька покупателя.
	// Вызывается после оформления заказа, никаких блокировок корзины/остатков не держит.
	InitiatePayment(ctx context.Context, orderID, phoneNumber string) (*PaymentResult, error)
	// RecordCallback сохраняет уведомление провайдера в журнал.
	RecordCallback(ctx context.Context, reference, status string, rawPayload []byte) error
}

type paymentService struct {
	log              *slog.Logger
	orderRepo        storage.OrderStorage
	notificationRepo storage.PaymentNotificationStorage
	collector        Collector
}

func NewPaymentService(log *slog.Logger, orderRepo storage.OrderStorage, notificationRepo storage.PaymentNotificationStorage, collector Collector) PaymentService {
	return &paymentService{
		log:              log,
		orderRepo:        orderRepo,
		notificationRepo: notificationRepo,
		collector:        collector,
	}
}

func (s *paymentService) InitiatePayment(ctx context.Context, orderID, phoneNumber string) (*PaymentResult, error) {
	const op = "service.PaymentService.InitiatePayment"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", orderID))
	logger.Info("initiating payment")

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		logger.Warn("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		logger.Warn("payment is not pending", slog.String("paymentStatus", order.PaymentStatus))
		return nil, fmt.Errorf("%s: %w", op, ErrPaymentNotPending)
	}

	resp, err := s.collector.Collect(ctx, order.TotalAmount, phoneNumber, order.ID)
	if err != nil {
		logger.Error("provider call failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.orderRepo.SetPaymentReference(ctx, orderID, resp.Reference); err != nil {
		logger.Error("failed to store payment reference", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to store payment reference: %w", op, err)
	}

	logger.Info("payment initiated", slog.String("reference", resp.Reference))
	return &PaymentResult{Reference: resp.Reference, Status: resp.Status}, nil
}

// RecordCallback только журналирует уведомление. Какой переход payment_status
// (и менять ли статус заказа) делать по уведомлению — открытый продуктовый
// вопрос, пока заказ по callback не меняется.
// TODO: после решения продуктовой команды добавить переход payment_status по уведомлению
func (s *paymentService) RecordCallback(ctx context.Context, reference, status string, rawPayload []byte) error {
	const op = "service.PaymentService.RecordCallback"
	logger := s.log.With(slog.String("op", op), slog.String("reference", reference), slog.String("status", status))

	n := &models.PaymentNotification{
		Reference:  reference,
		Status:     status,
		RawPayload: rawPayload,
	}
	if err := s.notificationRepo.SaveNotification(ctx, n); err != nil {
		logger.Error("failed to save notification", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("payment notification recorded")
	return nil
}
