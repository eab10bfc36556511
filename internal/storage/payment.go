package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/autoparts-shop/internal/domain/models"
)

// PaymentNotificationStorage описывает методы для журнала уведомлений провайдера.
type PaymentNotificationStorage interface {
	// SaveNotification сохраняет сырое уведомление провайдера как есть.
	SaveNotification(ctx context.Context, n *models.PaymentNotification) error
}

type paymentNotificationRepository struct {
	db *sql.DB
}

func NewPaymentNotificationRepository(db *sql.DB) PaymentNotificationStorage {
	return &paymentNotificationRepository{db: db}
}

func (r *paymentNotificationRepository) SaveNotification(ctx context.Context, n *models.PaymentNotification) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO payment_notifications (reference, status, raw_payload, received_at)
		 VALUES ($1, $2, $3, NOW()) RETURNING id, received_at`,
		n.Reference, n.Status, n.RawPayload,
	).Scan(&n.ID, &n.ReceivedAt)
	if err != nil {
		return fmt.Errorf("failed to save payment notification: %w", err)
	}
	return nil
}
