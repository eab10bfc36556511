package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/autoparts-shop/internal/domain/models"
)

var ErrCartNotFound = errors.New("cart not found")

// CartStorage описывает методы для работы с корзинами.
// Методы с суффиксом Tx выполняются в транзакции оформления заказа.
type CartStorage interface {
	GetCartBySession(ctx context.Context, sessionID string) (*models.Cart, error)
	// UpsertCart сохраняет корзину целиком: одна корзина на сессию,
	// список позиций перезаписывается (last-writer-wins).
	UpsertCart(ctx context.Context, cart *models.Cart) error
	GetCartBySessionTx(ctx context.Context, tx *sql.Tx, sessionID string) (*models.Cart, error)
	DeleteCartBySessionTx(ctx context.Context, tx *sql.Tx, sessionID string) error
}

// cartRepository — конкретная реализация CartStorage.
type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт новый репозиторий корзин.
func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func getCartBySession(ctx context.Context, q rowQuerier, sessionID string) (*models.Cart, error) {
	cart := &models.Cart{}
	row := q.QueryRowContext(ctx,
		"SELECT id, session_id, total_amount, created_at, updated_at FROM carts WHERE session_id = $1", sessionID)
	if err := row.Scan(&cart.ID, &cart.SessionID, &cart.TotalAmount, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT product_id, quantity, product_name, product_price, product_image
		 FROM cart_items WHERE cart_id = $1 ORDER BY id`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.ProductName, &item.ProductPrice, &item.ProductImage); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *cartRepository) GetCartBySession(ctx context.Context, sessionID string) (*models.Cart, error) {
	return getCartBySession(ctx, r.db, sessionID)
}

// GetCartBySessionTx читает корзину в рамках транзакции оформления заказа.
func (r *cartRepository) GetCartBySessionTx(ctx context.Context, tx *sql.Tx, sessionID string) (*models.Cart, error) {
	return getCartBySession(ctx, tx, sessionID)
}

// UpsertCart перезаписывает корзину: строка carts обновляется по session_id,
// позиции удаляются и вставляются заново в рамках одной транзакции.
func (r *cartRepository) UpsertCart(ctx context.Context, cart *models.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `INSERT INTO carts (id, session_id, total_amount, created_at, updated_at)
	          VALUES ($1, $2, $3, NOW(), NOW())
	          ON CONFLICT (session_id) DO UPDATE
	          SET total_amount = EXCLUDED.total_amount, updated_at = NOW()
	          RETURNING id, created_at, updated_at`
	if err = tx.QueryRowContext(ctx, query, cart.ID, cart.SessionID, cart.TotalAmount).
		Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cart.ID); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	for _, item := range cart.Items {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity, product_name, product_price, product_image)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			cart.ID, item.ProductID, item.Quantity, item.ProductName, item.ProductPrice, item.ProductImage,
		); err != nil {
			return fmt.Errorf("failed to insert cart item: %w", err)
		}
	}

	err = tx.Commit()
	return err
}

// DeleteCartBySessionTx удаляет корзину в транзакции оформления заказа,
// позиции удаляются каскадом.
func (r *cartRepository) DeleteCartBySessionTx(ctx context.Context, tx *sql.Tx, sessionID string) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM carts WHERE session_id = $1", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
