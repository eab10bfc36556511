package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/linemk/autoparts-shop/internal/domain/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock возвращается, когда условное списание остатка не прошло.
	// Название товара в ошибку подставляет сервисный слой.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductUpdate — частичное обновление товара, nil-поля не трогаются.
type ProductUpdate struct {
	Name          *string
	Description   *string
	Price         *float64
	Category      *string
	StockQuantity *int
	ImageBase64   *string
}

// ProductStorage описывает методы для работы с каталогом товаров.
type ProductStorage interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, category string, limit int) ([]*models.Product, error)
	UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]string, error)
	CountProducts(ctx context.Context) (int, error)
	// ReserveStockTx атомарно проверяет и списывает остаток одним условным UPDATE,
	// используя транзакцию оформления заказа.
	ReserveStockTx(ctx context.Context, tx *sql.Tx, id string, quantity int) error
}

// productRepository — конкретная реализация ProductStorage.
type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт новый репозиторий каталога.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = "id, name, description, price, category, stock_quantity, image_base64, created_at, updated_at"

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.StockQuantity, &p.ImageBase64, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `INSERT INTO products (id, name, description, price, category, stock_quantity, image_base64, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		product.ID, product.Name, product.Description, product.Price,
		product.Category, product.StockQuantity, product.ImageBase64,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// ListProducts возвращает товары, опционально отфильтрованные по категории.
func (r *productRepository) ListProducts(ctx context.Context, category string, limit int) ([]*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	args := []interface{}{}
	if category != "" {
		query += " WHERE category = $1"
		args = append(args, category)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct обновляет только переданные поля и возвращает обновлённый товар.
func (r *productRepository) UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*models.Product, error) {
	setClauses := []string{}
	args := []interface{}{}
	addSet := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		addSet("name", *upd.Name)
	}
	if upd.Description != nil {
		addSet("description", *upd.Description)
	}
	if upd.Price != nil {
		addSet("price", *upd.Price)
	}
	if upd.Category != nil {
		addSet("category", *upd.Category)
	}
	if upd.StockQuantity != nil {
		addSet("stock_quantity", *upd.StockQuantity)
	}
	if upd.ImageBase64 != nil {
		addSet("image_base64", *upd.ImageBase64)
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), len(args), productColumns)

	row := r.db.QueryRowContext(ctx, query, args...)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT category FROM products ORDER BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *productRepository) CountProducts(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ReserveStockTx списывает остаток одним условным UPDATE: проверка и декремент
// видны конкурентным оформлениям как одна операция, остаток не уходит в минус.
func (r *productRepository) ReserveStockTx(ctx context.Context, tx *sql.Tx, id string, quantity int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW() WHERE id = $2 AND stock_quantity >= $1",
		quantity, id,
	)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// UPDATE не прошёл: различаем отсутствующий товар и нехватку остатка
	var stock int
	err = tx.QueryRowContext(ctx, "SELECT stock_quantity FROM products WHERE id = $1", id).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	return ErrInsufficientStock
}
