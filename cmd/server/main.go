package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"courier/internal/app"
	"courier/internal/config"
	"courier/internal/handler"
	internalRedis "courier/internal/redis"
	"courier/internal/repository/postgres"
	"courier/internal/service"
)

func main() {
	// Local development only; the file is absent in deployed environments.
	_ = godotenv.Load()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic comes up first so the database driver can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	server, dispatcher := wireServer(db, redisClient, nrApp, cfg)

	dispatcher.Start()
	defer dispatcher.Stop()

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server together
// with the notification dispatcher, which the caller owns.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.NotificationDispatcher) {
	trackingCache := internalRedis.NewTrackingCache(redisClient)

	// Repositories and the transactional store.
	store := postgres.NewStore(db)
	userRepo := postgres.NewUserRepository(db)
	deliveryRepo := postgres.NewDeliveryRepository(db)
	eventRepo := postgres.NewStatusEventRepository(db)
	earningRepo := postgres.NewEarningRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Services.
	dispatcher := service.NewNotificationDispatcher(notificationRepo, cfg.Notifications.QueueSize)
	deliveryService := service.NewDeliveryService(store, deliveryRepo, eventRepo, trackingCache)
	claimService := service.NewClaimService(store, deliveryRepo, trackingCache, dispatcher)
	lifecycleService := service.NewLifecycleService(store, deliveryRepo, trackingCache, dispatcher)
	earningsService := service.NewEarningsService(earningRepo)
	paymentService := service.NewPaymentService(deliveryRepo, service.NewMockGateway(), dispatcher)

	// Handlers.
	deliveryHandler := handler.NewDeliveryHandler(deliveryService, lifecycleService, paymentService)
	driverHandler := handler.NewDriverHandler(deliveryService, claimService, lifecycleService, earningsService, userRepo)
	userHandler := handler.NewUserHandler(userRepo, notificationRepo)

	router := app.NewRouter(app.RouterDeps{
		DeliveryHandler: deliveryHandler,
		DriverHandler:   driverHandler,
		UserHandler:     userHandler,
		UserRepo:        userRepo,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, dispatcher
}
