package models

import "time"

// CartItem — позиция корзины. Название, цена и картинка товара
// денормализованы на момент добавления и дальше не синхронизируются с каталогом.
type CartItem struct {
	ProductID    string  `json:"product_id"`
	Quantity     int     `json:"quantity"`
	ProductName  string  `json:"product_name"`
	ProductPrice float64 `json:"product_price"`
	ProductImage *string `json:"product_image,omitempty"`
}

// Cart представляет корзину, привязанную к сессии (одна корзина на сессию)
type Cart struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"total_amount"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Total пересчитывает сумму корзины по текущим позициям.
// Всегда считаем с нуля, чтобы сумма не могла разойтись с позициями.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += float64(item.Quantity) * item.ProductPrice
	}
	return total
}
