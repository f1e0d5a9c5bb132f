package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gaming-cafe-booking/config"
	deliveryHttp "gaming-cafe-booking/internal/delivery/http"
	"gaming-cafe-booking/internal/delivery/http/handler"
	"gaming-cafe-booking/internal/delivery/http/middleware"
	"gaming-cafe-booking/internal/infrastructure/auth"
	"gaming-cafe-booking/internal/infrastructure/cache"
	"gaming-cafe-booking/internal/infrastructure/database"
	"gaming-cafe-booking/internal/infrastructure/messaging"
	"gaming-cafe-booking/internal/repository"
	"gaming-cafe-booking/internal/service"
	"gaming-cafe-booking/internal/usecase"
	"gaming-cafe-booking/pkg/jwt"
	"gaming-cafe-booking/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config          *config.Config
	Log             *logrus.Logger
	DB              *gorm.DB
	RedisClient     *redis.Client
	Publisher       *messaging.Publisher
	Consumer        *messaging.Consumer
	PaymentConsumer *messaging.PaymentConsumer
	SlotLock        *service.SlotLockService
	Server          *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	log := setupLogger(cfg.App)
	app.Log = log
	log.Info("Configuration loaded successfully")

	// Apply schema migrations
	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(cfg.DB, log); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	// Initialize Redis. The slot lock and cafe cache degrade without it.
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis, log)
		if err != nil {
			log.Warnf("Redis unavailable, running with in-process slot locks and no cafe cache: %v", err)
		} else {
			app.RedisClient = redisClient
		}
	}

	// Initialize RabbitMQ. Without a broker, events are dropped and payment
	// updates are not consumed.
	var publisher service.EventPublisher = service.NoopPublisher{}
	if cfg.Broker.URL != "" {
		mqPublisher, err := messaging.NewPublisher(cfg.Broker, log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect publisher to RabbitMQ: %w", err)
		}
		app.Publisher = mqPublisher
		publisher = mqPublisher

		mqConsumer, err := messaging.NewConsumer(cfg.Broker, log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect consumer to RabbitMQ: %w", err)
		}
		app.Consumer = mqConsumer
	} else {
		log.Warn("RABBITMQ_URL not set, booking events will not be published")
	}

	verifier, err := newTokenVerifier(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	// Initialize all layers
	if err := app.initialize(verifier, publisher); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

func newTokenVerifier(cfg *config.Config) (middleware.TokenVerifier, error) {
	switch cfg.Auth.Provider {
	case config.AuthProviderFirebase:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		verifier, err := auth.NewFirebaseVerifier(ctx, cfg.Auth.FirebaseCredentials)
		if err != nil {
			return nil, fmt.Errorf("failed to init firebase verifier: %w", err)
		}
		return verifier, nil
	default:
		return auth.NewJWTVerifier(jwt.NewJWTService(cfg.JWT)), nil
	}
}

// initialize wires repositories, services, usecases and the HTTP server
func (app *App) initialize(verifier middleware.TokenVerifier, publisher service.EventPublisher) error {
	cfg, db, log := app.Config, app.DB, app.Log

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	bookingRepo := repository.NewBookingRepository()
	cafeRepo := repository.NewCafeRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	app.SlotLock = service.NewSlotLockService(app.RedisClient, log, cfg.Booking.SlotLockTTL)
	cafeCache := service.NewCafeCache(app.RedisClient, log, cfg.Booking.RateCacheTTL)

	// Initialize usecases
	bookingUsecase := usecase.NewBookingUsecase(db, log, bookingRepo, cafeRepo, auditService, app.SlotLock, cafeCache, publisher, cfg.Booking.MaxCreateRetries)
	cafeUsecase := usecase.NewCafeUsecase(db, log, cafeRepo, auditService, cafeCache)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, bookingRepo, auditLogRepo)

	// Start consuming payment updates
	if app.Consumer != nil {
		msgs, err := app.Consumer.Consume()
		if err != nil {
			return fmt.Errorf("failed to start consuming payment updates: %w", err)
		}
		app.PaymentConsumer = messaging.NewPaymentConsumer(bookingUsecase, log)
		app.PaymentConsumer.Start(msgs)
	}

	// Initialize handlers
	bookingHandler := handler.NewBookingHandler(bookingUsecase, customValidator)
	cafeHandler := handler.NewCafeHandler(cafeUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(verifier, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins)
	loggingMiddleware := middleware.NewLoggingMiddleware(log)

	// Initialize router
	router := deliveryHttp.NewRouter(bookingHandler, cafeHandler, auditLogHandler, authMiddleware, corsMiddleware, loggingMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:              serverAddr,
		Handler:           http.TimeoutHandler(httpRouter, cfg.App.RequestTimeout, `{"success":false,"message":"Request timed out"}`),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.App.RequestTimeout,
		WriteTimeout:      cfg.App.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close stops background workers, then closes all connections
func (app *App) Close() {
	// Closing the consumer channel ends the payment consume loop
	if app.Consumer != nil {
		app.Consumer.Close()
	}
	if app.PaymentConsumer != nil {
		app.PaymentConsumer.Wait()
	}

	if app.Publisher != nil {
		app.Publisher.Close()
	}

	// Stop slot lock cleanup goroutine
	if app.SlotLock != nil {
		app.SlotLock.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
