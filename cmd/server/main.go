package main

import (
	"context"
	"database/sql"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"bikeride/internal/app"
	"bikeride/internal/config"
	"bikeride/internal/ephemeral"
	internalFirebase "bikeride/internal/firebase"
	"bikeride/internal/handler"
	"bikeride/internal/movement"
	"bikeride/internal/mq"
	"bikeride/internal/notify"
	internalRedis "bikeride/internal/redis"
	"bikeride/internal/repository/postgres"
	"bikeride/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	nrApp := app.NewRelicApp(cfg.NewRelic)

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	if cfg.Database.MigrationsPath != "" {
		if err := app.RunMigrations(db, cfg.Database.MigrationsPath); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Firebase is only needed by the firebase ephemeral store and FCM.
	var fbApp *firebase.App
	if cfg.Tracking.EphemeralBackend == config.EphemeralFirebase || cfg.Tracking.NotificationBackend == config.NotifyFCM {
		fbApp, err = app.NewFirebaseApp(ctx, cfg.Firebase)
		if err != nil {
			log.Fatalf("failed to initialise firebase: %v", err)
		}
		log.Println("Firebase initialised")
	}

	store, err := newEphemeralStore(ctx, cfg, redisClient, fbApp)
	if err != nil {
		log.Fatalf("failed to create ephemeral store: %v", err)
	}

	userRepo := postgres.NewUserRepository(db)
	gateway, closer, err := newGateway(ctx, cfg, fbApp, userRepo)
	if err != nil {
		log.Fatalf("failed to create notification gateway: %v", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg, store, gateway)

	// Start server in goroutine.
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

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Println("Server exited")
}

// newEphemeralStore selects where live samples are buffered.
func newEphemeralStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, fbApp *firebase.App) (ephemeral.Store, error) {
	switch cfg.Tracking.EphemeralBackend {
	case config.EphemeralFirebase:
		client, err := fbApp.Database(ctx)
		if err != nil {
			return nil, err
		}
		log.Println("Ephemeral store: Firebase Realtime Database")
		return internalFirebase.NewSampleStore(client), nil
	default:
		log.Println("Ephemeral store: Redis")
		return internalRedis.NewSampleStore(redisClient, cfg.Tracking.SampleTTL), nil
	}
}

// newGateway selects how completion notifications leave the service. The
// returned closer, when non-nil, releases the broker connection.
func newGateway(ctx context.Context, cfg *config.Config, fbApp *firebase.App, users *postgres.UserRepository) (notify.Gateway, io.Closer, error) {
	switch cfg.Tracking.NotificationBackend {
	case config.NotifyFCM:
		client, err := fbApp.Messaging(ctx)
		if err != nil {
			return nil, nil, err
		}
		log.Println("Notifications: Firebase Cloud Messaging")
		return internalFirebase.NewPushGateway(client, users), nil, nil
	case config.NotifyRabbitMQ:
		conn, ch, err := mq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.ConnectAttempts, cfg.RabbitMQ.ConnectDelay)
		if err != nil {
			return nil, nil, err
		}
		log.Println("Notifications: RabbitMQ")
		return mq.NewPublisher(ch, cfg.RabbitMQ.Exchange), conn, nil
	default:
		log.Println("Notifications: log")
		return notify.NewLogGateway(), nil, nil
	}
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	cfg *config.Config,
	store ephemeral.Store,
	gateway notify.Gateway,
) *http.Server {
	// Initialize Redis stores.
	cacheStore := internalRedis.NewCacheStore(redisClient, cfg.Movement.CacheTTL)

	// Initialize repositories.
	journeyRepo := postgres.NewRideJourneyRepository(db)
	trackingRepo := postgres.NewTrackingRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	bikeRepo := postgres.NewBikeRepository(db)
	userRepo := postgres.NewUserRepository(db)
	txManager := postgres.NewTxManager(db)

	// Initialize services.
	classifierCfg := movement.DefaultConfig()
	classifierCfg.Window = cfg.Movement.Window
	classifierCfg.StationaryMaxDistance = cfg.Movement.StationaryMaxDistance
	classifierCfg.CircularTolerance = cfg.Movement.CircularTolerance
	classifierCfg.ZigzagMinAlternation = cfg.Movement.ZigzagMinAlternation
	classifierCfg.MinTurnDegrees = cfg.Movement.MinTurnDegrees
	classifier := movement.NewClassifier(classifierCfg)

	retry := service.RetryPolicy{
		Timeout: cfg.Reconciler.CallTimeout,
		Retries: cfg.Reconciler.Retries,
		Backoff: cfg.Reconciler.RetryBackoff,
	}

	notificationService := service.NewNotificationService(gateway, userRepo)
	journeyService := service.NewJourneyService(journeyRepo, bookingRepo, trackingRepo)
	ingestionService := service.NewIngestionService(journeyRepo, store)
	movementService := service.NewMovementService(journeyRepo, trackingRepo, store, cacheStore, classifier)
	reconciler := service.NewReconciler(txManager, journeyRepo, bikeRepo, trackingRepo, store, notificationService, retry)

	// Initialize handlers.
	journeyHandler := handler.NewJourneyHandler(journeyService, reconciler, movementService)
	locationHandler := handler.NewLocationHandler(ingestionService)
	liveHandler := handler.NewLiveHandler(movementService, cfg.Movement.PollInterval)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		JourneyHandler:  journeyHandler,
		LocationHandler: locationHandler,
		LiveHandler:     liveHandler,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		IdempotencyTTL:  cfg.Server.IdempotencyTTL,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
