package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linemk/autoparts-shop/internal/app/handlers"
	"github.com/linemk/autoparts-shop/internal/domain/models"
	"github.com/linemk/autoparts-shop/internal/service"
	"github.com/linemk/autoparts-shop/internal/storage"
	"github.com/stretchr/testify/assert"
)

// fakeCatalogService — фиктивный сервис каталога.
type fakeCatalogService struct {
	product    *models.Product
	products   []*models.Product
	categories []string
	seeded     bool
	err        error
}

var _ service.CatalogService = (*fakeCatalogService)(nil)

func (f *fakeCatalogService) CreateProduct(ctx context.Context, in service.ProductInput) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeCatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeCatalogService) ListProducts(ctx context.Context, category string, limit int) ([]*models.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalogService) UpdateProduct(ctx context.Context, id string, upd storage.ProductUpdate) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeCatalogService) DeleteProduct(ctx context.Context, id string) error {
	return f.err
}

func (f *fakeCatalogService) ListCategories(ctx context.Context) ([]string, error) {
	return f.categories, f.err
}

func (f *fakeCatalogService) SeedSampleData(ctx context.Context) (bool, error) {
	return f.seeded, f.err
}

func TestCreateProductHandler_Success(t *testing.T) {
	catalog := &fakeCatalogService{product: &models.Product{ID: "prod-1", Name: "Oil Filter", Price: 12.50}}
	handler := handlers.CreateProductHandler(testLogger(), catalog)

	body := []byte(`{"name": "Oil Filter", "description": "Standard oil filter", "price": 12.50, "category": "Engine", "stock_quantity": 20}`)
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.Product
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "prod-1", resp.ID)
}

func TestCreateProductHandler_ValidationError(t *testing.T) {
	handler := handlers.CreateProductHandler(testLogger(), &fakeCatalogService{})

	// Нет обязательных полей
	body := []byte(`{"name": "Oil Filter"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// TestListProductsHandler_EmptyCatalog: пустой каталог — это [], а не null.
func TestListProductsHandler_EmptyCatalog(t *testing.T) {
	handler := handlers.ListProductsHandler(testLogger(), &fakeCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestListProductsHandler_InvalidLimit(t *testing.T) {
	handler := handlers.ListProductsHandler(testLogger(), &fakeCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/products?limit=abc", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCategoriesHandler(t *testing.T) {
	handler := handlers.CategoriesHandler(testLogger(), &fakeCatalogService{categories: []string{"Brakes", "Engine"}})

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string][]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Brakes", "Engine"}, resp["categories"])
}

func TestInitSampleDataHandler(t *testing.T) {
	handler := handlers.InitSampleDataHandler(testLogger(), &fakeCatalogService{seeded: true})

	req := httptest.NewRequest(http.MethodPost, "/api/init-sample-data", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Sample data initialized successfully")
}

func TestInitSampleDataHandler_AlreadySeeded(t *testing.T) {
	handler := handlers.InitSampleDataHandler(testLogger(), &fakeCatalogService{seeded: false})

	req := httptest.NewRequest(http.MethodPost, "/api/init-sample-data", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Sample data already exists")
}
