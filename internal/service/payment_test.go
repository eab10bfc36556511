package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/linemk/autoparts-shop/internal/domain/models"
	"github.com/linemk/autoparts-shop/internal/payment/momo"
	"github.com/linemk/autoparts-shop/internal/service"
	"github.com/linemk/autoparts-shop/internal/storage"
	"github.com/stretchr/testify/assert"
)

// fakeNotificationRepo — фиктивная реализация PaymentNotificationStorage.
type fakeNotificationRepo struct {
	notifications []*models.PaymentNotification
}

var _ storage.PaymentNotificationStorage = (*fakeNotificationRepo)(nil)

func (f *fakeNotificationRepo) SaveNotification(ctx context.Context, n *models.PaymentNotification) error {
	f.notifications = append(f.notifications, n)
	return nil
}

// fakeCollector — фиктивный платёжный провайдер.
type fakeCollector struct {
	resp  *momo.CollectResponse
	err   error
	calls []float64
}

func (f *fakeCollector) Collect(ctx context.Context, amount float64, phoneNumber, externalReference string) (*momo.CollectResponse, error) {
	f.calls = append(f.calls, amount)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestInitiatePayment_Success(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	orderRepo.orders["order-1"] = &models.Order{
		ID:            "order-1",
		TotalAmount:   149.50,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	collector := &fakeCollector{resp: &momo.CollectResponse{Reference: "ref-123", Status: "pending"}}

	svc := service.NewPaymentService(testLogger(), orderRepo, &fakeNotificationRepo{}, collector)

	result, err := svc.InitiatePayment(context.Background(), "order-1", "+237670000000")
	assert.NoError(t, err)
	assert.Equal(t, "ref-123", result.Reference)
	assert.Equal(t, []float64{149.50}, collector.calls, "Collect should be called with the order total")

	order := orderRepo.orders["order-1"]
	assert.NotNil(t, order.PaymentReference)
	assert.Equal(t, "ref-123", *order.PaymentReference)
}

func TestInitiatePayment_OrderNotFound(t *testing.T) {
	svc := service.NewPaymentService(testLogger(), newFakeOrderRepo(), &fakeNotificationRepo{}, &fakeCollector{})

	_, err := svc.InitiatePayment(context.Background(), "missing", "+237670000000")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrOrderNotFound))
}

func TestInitiatePayment_AlreadyPaid(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	orderRepo.orders["order-1"] = &models.Order{ID: "order-1", PaymentStatus: models.PaymentStatusPaid}
	collector := &fakeCollector{resp: &momo.CollectResponse{Reference: "ref-123"}}

	svc := service.NewPaymentService(testLogger(), orderRepo, &fakeNotificationRepo{}, collector)

	_, err := svc.InitiatePayment(context.Background(), "order-1", "+237670000000")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrPaymentNotPending))
	assert.Empty(t, collector.calls, "Provider should not be called for a paid order")
}

func TestInitiatePayment_ProviderError(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	orderRepo.orders["order-1"] = &models.Order{ID: "order-1", PaymentStatus: models.PaymentStatusPending}
	collector := &fakeCollector{err: momo.ErrProvider}

	svc := service.NewPaymentService(testLogger(), orderRepo, &fakeNotificationRepo{}, collector)

	_, err := svc.InitiatePayment(context.Background(), "order-1", "+237670000000")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, momo.ErrProvider))
	assert.Nil(t, orderRepo.orders["order-1"].PaymentReference, "No reference should be stored on provider failure")
}

// TestRecordCallback: уведомление журналируется как есть, заказ не меняется.
func TestRecordCallback(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	ref := "ref-123"
	orderRepo.orders["order-1"] = &models.Order{
		ID:               "order-1",
		Status:           models.OrderStatusPending,
		PaymentStatus:    models.PaymentStatusPending,
		PaymentReference: &ref,
	}
	notificationRepo := &fakeNotificationRepo{}

	svc := service.NewPaymentService(testLogger(), orderRepo, notificationRepo, &fakeCollector{})

	err := svc.RecordCallback(context.Background(), "ref-123", "SUCCESSFUL", []byte(`{"reference":"ref-123","status":"SUCCESSFUL"}`))
	assert.NoError(t, err)
	assert.Len(t, notificationRepo.notifications, 1)
	assert.Equal(t, "ref-123", notificationRepo.notifications[0].Reference)
	assert.Equal(t, "SUCCESSFUL", notificationRepo.notifications[0].Status)

	order := orderRepo.orders["order-1"]
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
}
