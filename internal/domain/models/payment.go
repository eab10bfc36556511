package models

import "time"

// PaymentNotification — сырое уведомление от платёжного провайдера.
// Сохраняем как есть: какой переход статуса заказа делать по уведомлению,
// продуктовая команда ещё не решила.
type PaymentNotification struct {
	ID         int64     `json:"id"`
	Reference  string    `json:"reference"`
	Status     string    `json:"status"`
	RawPayload []byte    `json:"-"`
	ReceivedAt time.Time `json:"received_at"`
}
