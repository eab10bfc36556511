package models

import "time"

// Статусы заказа. Переходы между ними система не контролирует,
// но значения вне набора отклоняются на валидации.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Статусы оплаты заказа
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// OrderItem — позиция заказа, неизменяемый снимок позиции корзины на момент оформления
type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

// Order представляет оформленный заказ
type Order struct {
	ID               string      `json:"id"`
	UserID           *int64      `json:"user_id,omitempty"` // заполняется, если покупатель был авторизован
	CustomerName     string      `json:"customer_name"`
	CustomerEmail    string      `json:"customer_email"`
	CustomerPhone    string      `json:"customer_phone"`
	CustomerAddress  string      `json:"customer_address"`
	Items            []OrderItem `json:"items"`
	TotalAmount      float64     `json:"total_amount"`
	Status           string      `json:"status"`
	PaymentStatus    string      `json:"payment_status"`
	PaymentReference *string     `json:"payment_reference,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// ValidOrderStatus проверяет, входит ли статус в допустимый набор.
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}
