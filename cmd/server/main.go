package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	billingapp "github.com/cuentia/backend/internal/application/billing"
	"github.com/cuentia/backend/internal/domain/billing"
	"github.com/cuentia/backend/internal/infrastructure/auth"
	infrabilling "github.com/cuentia/backend/internal/infrastructure/billing"
	"github.com/cuentia/backend/internal/infrastructure/cache"
	"github.com/cuentia/backend/internal/infrastructure/config"
	"github.com/cuentia/backend/internal/infrastructure/event"
	"github.com/cuentia/backend/internal/infrastructure/logger"
	"github.com/cuentia/backend/internal/infrastructure/notify"
	"github.com/cuentia/backend/internal/infrastructure/persistence"
	"github.com/cuentia/backend/internal/interfaces/http/handler"
	"github.com/cuentia/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CuentIA billing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate billing tables", zap.Error(err))
	}

	// Webhook delivery deduplication store: Redis when available, with an
	// in-memory fallback for single-instance deployments
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Initialize repositories
	subRepo := persistence.NewGormSubscriptionRepository(db.DB)
	itemRepo := persistence.NewGormSubscriptionItemRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRecordRepository(db.DB)
	manualPaymentRepo := persistence.NewGormManualPaymentRepository(db.DB)
	customerRepo := persistence.NewGormProcessorCustomerRepository(db.DB)
	usageRepo := persistence.NewGormUsageRepository(db.DB)
	accountDirectory := persistence.NewGormAccountDirectory(db.DB)

	// Catalog maps processor price IDs to plan/bot/addon codes
	catalog := billing.NewCatalog(cfg.Stripe.PriceCodes)

	// Stripe gateway is the single outbound port to the payment processor
	stripeGateway, err := infrabilling.NewStripeGateway(&cfg.Stripe, log)
	if err != nil {
		log.Fatal("Failed to initialize Stripe gateway", zap.Error(err))
	}

	notifier := notify.NewLoggerNotifier(log)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Failed invoice payments are pushed to the user off the event bus
	eventBus.Subscribe(billingapp.NewPaymentFailureNotifier(notifier, log))

	// Initialize application services
	reconciler := billingapp.NewItemReconciler(itemRepo, catalog, log)

	webhookService := billingapp.NewStripeWebhookService(billingapp.StripeWebhookServiceConfig{
		Config:       &cfg.Stripe,
		CustomerRepo: customerRepo,
		SubRepo:      subRepo,
		PaymentRepo:  paymentRepo,
		Accounts:     accountDirectory,
		Reconciler:   reconciler,
		Notifier:     notifier,
		Idempotency:  idempotencyStore,
		EventBus:     eventBus,
		Logger:       log,
	})

	subscriptionService := billingapp.NewSubscriptionService(billingapp.SubscriptionServiceConfig{
		Config:      &cfg.Stripe,
		SubRepo:     subRepo,
		ItemRepo:    itemRepo,
		PaymentRepo: paymentRepo,
		Processor:   stripeGateway,
		Catalog:     catalog,
		EventBus:    eventBus,
		Logger:      log,
	})

	manualPaymentService := billingapp.NewManualPaymentService(billingapp.ManualPaymentServiceConfig{
		RequestRepo: manualPaymentRepo,
		SubRepo:     subRepo,
		ItemRepo:    itemRepo,
		Accounts:    accountDirectory,
		Catalog:     catalog,
		Notifier:    notifier,
		Logger:      log,
	})

	entitlementService := billingapp.NewEntitlementService(subRepo, itemRepo, paymentRepo, catalog, log)
	usageService := billingapp.NewUsageService(usageRepo, subRepo, catalog, log)
	checkoutService := billingapp.NewCheckoutService(&cfg.Stripe, customerRepo, accountDirectory, stripeGateway, catalog, log)

	// Initialize HTTP handlers
	jwtService := auth.NewJWTService(cfg.JWT)
	systemHandler := handler.NewSystemHandler(db, cfg.App.Name, version)
	webhookHandler := handler.NewStripeWebhookHandler(webhookService)
	billingHandler := handler.NewBillingHandler(
		entitlementService,
		subscriptionService,
		usageService,
		checkoutService,
		manualPaymentService,
		subRepo,
	)
	adminHandler := handler.NewAdminHandler(manualPaymentService)

	engine := router.New(router.Config{
		AppConfig:  cfg,
		JWTService: jwtService,
		Logger:     log,
		Public:     []router.PublicRegistrar{systemHandler},
		Webhooks:   []router.RouteRegistrar{webhookHandler},
		API:        []router.RouteRegistrar{billingHandler, adminHandler},
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
