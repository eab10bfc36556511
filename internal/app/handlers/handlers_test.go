package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/autoparts-shop/internal/app/handlers"
	"github.com/linemk/autoparts-shop/internal/domain/models"
	"github.com/linemk/autoparts-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/autoparts-shop/internal/payment/momo"
	"github.com/linemk/autoparts-shop/internal/service"
	"github.com/linemk/autoparts-shop/internal/storage"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// fakeAuthService — фиктивный сервис аутентификации.
type fakeAuthService struct {
	token string
	err   error
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

// fakeOrderService — фиктивный сервис заказов.
type fakeOrderService struct {
	order      *models.Order
	orders     []*models.Order
	err        error
	gotInfo    service.CustomerInfo
	gotSession string
	gotUserID  *int64
	gotStatus  string
}

var _ service.OrderService = (*fakeOrderService)(nil)

func (f *fakeOrderService) PlaceOrder(ctx context.Context, info service.CustomerInfo, sessionID string, userID *int64) (*models.Order, error) {
	f.gotInfo = info
	f.gotSession = sessionID
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func (f *fakeOrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func (f *fakeOrderService) ListOrders(ctx context.Context, limit int) ([]*models.Order, error) {
	return f.orders, f.err
}

func (f *fakeOrderService) ListUserOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	return f.orders, f.err
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, id string, status string) error {
	f.gotStatus = status
	return f.err
}

// fakeCartService — фиктивный сервис корзины.
type fakeCartService struct {
	cart *models.Cart
	err  error
}

var _ service.CartService = (*fakeCartService)(nil)

func (f *fakeCartService) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	return f.cart, f.err
}

func (f *fakeCartService) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*models.Cart, error) {
	return f.cart, f.err
}

func (f *fakeCartService) RemoveItem(ctx context.Context, sessionID, productID string) (*models.Cart, error) {
	return f.cart, f.err
}

func (f *fakeCartService) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*models.Cart, error) {
	return f.cart, f.err
}

// fakePaymentService — фиктивный сервис оплаты.
type fakePaymentService struct {
	result       *service.PaymentResult
	err          error
	gotReference string
	gotStatus    string
}

var _ service.PaymentService = (*fakePaymentService)(nil)

func (f *fakePaymentService) InitiatePayment(ctx context.Context, orderID, phoneNumber string) (*service.PaymentResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakePaymentService) RecordCallback(ctx context.Context, reference, status string, rawPayload []byte) error {
	f.gotReference = reference
	f.gotStatus = status
	return f.err
}

func TestAuthHandler_Success(t *testing.T) {
	handler := handlers.AuthHandler(testLogger(), &fakeAuthService{token: "valid-token"})

	body := []byte(`{"username": "user@example.com", "password": "password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.AuthResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "valid-token", resp.Token)
}

func TestAuthHandler_ValidationError(t *testing.T) {
	handler := handlers.AuthHandler(testLogger(), &fakeAuthService{token: "valid-token"})

	// Пароль короче 8 символов
	body := []byte(`{"username": "user@example.com", "password": "short"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthHandler_InvalidCredentials(t *testing.T) {
	handler := handlers.AuthHandler(testLogger(), &fakeAuthService{err: assert.AnError})

	body := []byte(`{"username": "user@example.com", "password": "password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func orderRequestBody() []byte {
	return []byte(`{
		"customer_name": "John Doe",
		"customer_email": "john@example.com",
		"customer_phone": "+237670000000",
		"customer_address": "12 Main Street",
		"cart_session_id": "sess-1"
	}`)
}

func TestCreateOrderHandler_Success(t *testing.T) {
	orderService := &fakeOrderService{order: &models.Order{ID: "order-1", TotalAmount: 25.0, Status: models.OrderStatusPending}}
	handler := handlers.CreateOrderHandler(testLogger(), orderService)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(orderRequestBody()))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "sess-1", orderService.gotSession)
	assert.Equal(t, "John Doe", orderService.gotInfo.Name)
	assert.Nil(t, orderService.gotUserID, "Anonymous checkout should not carry a user id")

	var resp models.Order
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "order-1", resp.ID)
}

// TestCreateOrderHandler_AuthenticatedUser: userID из контекста попадает в заказ.
func TestCreateOrderHandler_AuthenticatedUser(t *testing.T) {
	orderService := &fakeOrderService{order: &models.Order{ID: "order-1"}}
	handler := handlers.CreateOrderHandler(testLogger(), orderService)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(orderRequestBody()))
	req = req.WithContext(context.WithValue(req.Context(), jwtmiddleware.UserIDKey, int64(42)))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotNil(t, orderService.gotUserID)
	assert.Equal(t, int64(42), *orderService.gotUserID)
}

func TestCreateOrderHandler_EmptyCart(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakeOrderService{err: service.ErrEmptyCart})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(orderRequestBody()))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "cart is empty")
}

// TestCreateOrderHandler_InsufficientStock: ответ 400 и название товара в сообщении.
func TestCreateOrderHandler_InsufficientStock(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(),
		&fakeOrderService{err: &service.InsufficientStockError{ProductName: "Heavy Duty Car Battery"}})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(orderRequestBody()))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Heavy Duty Car Battery")
}

func TestCreateOrderHandler_MissingFields(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakeOrderService{})

	body := []byte(`{"customer_name": "John Doe"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateOrderStatusHandler_InvalidStatus(t *testing.T) {
	handler := handlers.UpdateOrderStatusHandler(testLogger(), &fakeOrderService{})

	body := []byte(`{"status": "teleported"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/orders/order-1/status", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateOrderStatusHandler_Success(t *testing.T) {
	orderService := &fakeOrderService{}
	handler := handlers.UpdateOrderStatusHandler(testLogger(), orderService)

	body := []byte(`{"status": "shipped"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/orders/order-1/status", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "shipped", orderService.gotStatus)
	assert.Contains(t, rr.Body.String(), "Order status updated")
}

func TestGetOrderHandler_NotFound(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/api/orders/{id}", handlers.GetOrderHandler(testLogger(), &fakeOrderService{err: storage.ErrOrderNotFound}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/missing", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// TestMyOrdersHandler_UnknownUser: токен валиден, но пользователь уже удалён — 404.
func TestMyOrdersHandler_UnknownUser(t *testing.T) {
	handler := handlers.MyOrdersHandler(testLogger(), &fakeOrderService{err: storage.ErrUserNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), jwtmiddleware.UserIDKey, int64(99)))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "user not found")
}

func TestMyOrdersHandler_Unauthorized(t *testing.T) {
	handler := handlers.MyOrdersHandler(testLogger(), &fakeOrderService{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/me", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAddToCartHandler_DefaultQuantity(t *testing.T) {
	cart := &models.Cart{SessionID: "sess-1", Items: []models.CartItem{{ProductID: "prod-a", Quantity: 1}}}
	handler := handlers.AddToCartHandler(testLogger(), &fakeCartService{cart: cart})

	// Количество не передано — подразумевается 1
	body := []byte(`{"session_id": "sess-1", "product_id": "prod-a"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/cart/add", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.CartResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Item added to cart", resp.Message)
	assert.Equal(t, "sess-1", resp.Cart.SessionID)
}

func TestAddToCartHandler_UnknownProduct(t *testing.T) {
	handler := handlers.AddToCartHandler(testLogger(), &fakeCartService{err: storage.ErrProductNotFound})

	body := []byte(`{"session_id": "sess-1", "product_id": "missing", "quantity": 1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/cart/add", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetCartHandler(t *testing.T) {
	cart := &models.Cart{SessionID: "sess-1", Items: []models.CartItem{}}
	router := chi.NewRouter()
	router.Get("/api/cart/{session_id}", handlers.GetCartHandler(testLogger(), &fakeCartService{cart: cart}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart/sess-1", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.Cart
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "sess-1", resp.SessionID)
}

func TestPayOrderHandler_Success(t *testing.T) {
	handler := handlers.PayOrderHandler(testLogger(),
		&fakePaymentService{result: &service.PaymentResult{Reference: "ref-123", Status: "pending"}})

	body := []byte(`{"phone_number": "+237670000000"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orders/order-1/pay", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ref-123")
}

// TestPayOrderHandler_ProviderDown: отказ провайдера транслируется в 502.
func TestPayOrderHandler_ProviderDown(t *testing.T) {
	handler := handlers.PayOrderHandler(testLogger(), &fakePaymentService{err: momo.ErrProvider})

	body := []byte(`{"phone_number": "+237670000000"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orders/order-1/pay", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "payment provider unavailable")
}

func TestPaymentCallbackHandler(t *testing.T) {
	paymentService := &fakePaymentService{}
	handler := handlers.PaymentCallbackHandler(testLogger(), paymentService)

	body := []byte(`{"reference": "ref-123", "status": "SUCCESSFUL"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/payments/callback", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ref-123", paymentService.gotReference)
	assert.Equal(t, "SUCCESSFUL", paymentService.gotStatus)
	assert.Contains(t, rr.Body.String(), "Notification recorded")
}

func TestPaymentCallbackHandler_MissingReference(t *testing.T) {
	handler := handlers.PaymentCallbackHandler(testLogger(), &fakePaymentService{})

	body := []byte(`{"status": "SUCCESSFUL"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/payments/callback", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
