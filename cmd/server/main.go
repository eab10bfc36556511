package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/autoparts-shop/internal/app"
	"github.com/linemk/autoparts-shop/internal/app/handlers"
	"github.com/linemk/autoparts-shop/internal/config"
	"github.com/linemk/autoparts-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/autoparts-shop/internal/lib/logger"
	"github.com/linemk/autoparts-shop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/autoparts-shop/internal/payment/momo"
	"github.com/linemk/autoparts-shop/internal/service"
	"github.com/linemk/autoparts-shop/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	notificationRepo := storage.NewPaymentNotificationRepository(application.DB)

	// клиент платёжного провайдера (мобильные деньги)
	momoClient := momo.NewClient(cfg.Payment.BaseURL, cfg.Payment.APIKey, cfg.Payment.Currency, cfg.Payment.Timeout)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	catalogService := service.NewCatalogService(application.Logger, productRepo)
	cartService := service.NewCartService(application.Logger, cartRepo, productRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, cartRepo, productRepo, orderRepo, userRepo)
	paymentService := service.NewPaymentService(application.Logger, orderRepo, notificationRepo, momoClient)

	// эндпоинт для аутентификации
	router.Post("/api/auth", handlers.AuthHandler(application.Logger, authService))

	// каталог товаров
	router.Post("/api/products", handlers.CreateProductHandler(application.Logger, catalogService))
	router.Get("/api/products", handlers.ListProductsHandler(application.Logger, catalogService))
	router.Get("/api/products/{id}", handlers.GetProductHandler(application.Logger, catalogService))
	router.Put("/api/products/{id}", handlers.UpdateProductHandler(application.Logger, catalogService))
	router.Delete("/api/products/{id}", handlers.DeleteProductHandler(application.Logger, catalogService))
	router.Get("/api/categories", handlers.CategoriesHandler(application.Logger, catalogService))
	router.Post("/api/init-sample-data", handlers.InitSampleDataHandler(application.Logger, catalogService))

	// корзина сессии
	router.Post("/api/cart/add", handlers.AddToCartHandler(application.Logger, cartService))
	router.Get("/api/cart/{session_id}", handlers.GetCartHandler(application.Logger, cartService))
	router.Post("/api/cart/remove", handlers.RemoveFromCartHandler(application.Logger, cartService))
	router.Post("/api/cart/update", handlers.UpdateCartHandler(application.Logger, cartService))

	// заказы: оформить можно анонимно, токен лишь привязывает заказ к пользователю
	router.Group(func(r chi.Router) {
		optionalJWT := jwtmiddleware.NewOptionalJWTMiddleware()
		r.Use(optionalJWT)
		r.Post("/api/orders", handlers.CreateOrderHandler(application.Logger, orderService))
	})
	router.Get("/api/orders", handlers.ListOrdersHandler(application.Logger, orderService))
	router.Get("/api/orders/{id}", handlers.GetOrderHandler(application.Logger, orderService))
	router.Put("/api/orders/{id}/status", handlers.UpdateOrderStatusHandler(application.Logger, orderService))

	// заказы текущего пользователя — только с токеном
	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)
		r.Get("/api/orders/me", handlers.MyOrdersHandler(application.Logger, orderService))
	})

	// оплата
	router.Post("/api/orders/{id}/pay", handlers.PayOrderHandler(application.Logger, paymentService))
	router.Post("/api/payments/callback", handlers.PaymentCallbackHandler(application.Logger, paymentService))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
