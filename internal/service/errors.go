package service

import (
	"errors"
	"fmt"
)

// ErrEmptyCart возвращается при оформлении, если корзины нет или она пуста.
// Повторное оформление той же сессии попадает сюда же: корзина уже удалена.
var ErrEmptyCart = errors.New("cart is empty")

// ErrInvalidStatus возвращается при попытке выставить заказу статус вне допустимого набора.
var ErrInvalidStatus = errors.New("invalid order status")

// InsufficientStockError — нехватка остатка по конкретному товару.
// В сообщении обязательно имя товара, по нему покупатель понимает, что убрать из корзины.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}
