package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	emailadapter "github.com/omar-farha/ne3ma-service/internal/adapter/email"
	mongoadapter "github.com/omar-farha/ne3ma-service/internal/adapter/mongo"
	natsadapter "github.com/omar-farha/ne3ma-service/internal/adapter/nats"
	redisadapter "github.com/omar-farha/ne3ma-service/internal/adapter/redis"
	"github.com/omar-farha/ne3ma-service/internal/adapter/storage/s3"
	"github.com/omar-farha/ne3ma-service/internal/app/config"
	"github.com/omar-farha/ne3ma-service/internal/platform/logger"
	httpport "github.com/omar-farha/ne3ma-service/internal/port/http"
	"github.com/omar-farha/ne3ma-service/internal/service"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type App struct {
	cfg         *config.Config
	log         logger.Logger
	server      *httpport.Server
	mongoClient *mongo.Client
	redisClient *redis.Client
	natsConn    *nats.Conn
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s", cfg.Env, cfg.HTTPServer.Port)

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	appLogger.Info("MongoDB client initialized successfully")

	appLogger.Info("Initializing Redis client...")
	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	appLogger.Info("Redis client initialized successfully")

	appLogger.Info("Connecting to NATS...")
	natsConn, err := natsadapter.NewConnection(cfg.NATS)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	publisher, err := natsadapter.NewPublisher(natsConn)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}
	appLogger.Info("NATS connection established")

	photoStorage, err := s3.NewPhotoStorage(cfg.Storage, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize photo storage: %w", err)
	}
	appLogger.Info("Photo storage initialized")

	// Email is optional; without SMTP settings order confirmations degrade to
	// in-app notifications only.
	var mailer emailadapter.EmailSender
	if cfg.SMTP.Host != "" {
		mailer, err = emailadapter.NewSMTPSender(cfg.SMTP, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SMTP sender: %w", err)
		}
		appLogger.Info("SMTP sender initialized")
	} else {
		appLogger.Warn("SMTP host not configured, order confirmation emails disabled")
	}

	listingRepo := mongoadapter.NewListingRepository(mongoClient, cfg.MongoDB)
	donationRepo := mongoadapter.NewDonationRepository(mongoClient, cfg.MongoDB)
	orderRepo := mongoadapter.NewOrderRepository(mongoClient, cfg.MongoDB)
	notificationRepo := mongoadapter.NewNotificationRepository(mongoClient, cfg.MongoDB)
	listingCache := redisadapter.NewListingCache(redisClient)
	unreadCache := redisadapter.NewUnreadCountCache(redisClient)
	appLogger.Info("Repositories initialized")

	notificationSvc := service.NewNotificationService(notificationRepo, unreadCache, publisher, appLogger, cfg.Notifications.UnreadCountTTL)
	listingSvc := service.NewListingService(listingRepo, donationRepo, listingCache, photoStorage, notificationSvc, appLogger, cfg.ListingCache.TTL)
	orderSvc := service.NewOrderService(orderRepo, notificationSvc, mailer, appLogger)
	appLogger.Info("Services initialized")

	router := httpport.NewRouter(
		httpport.NewListingHandler(listingSvc, appLogger),
		httpport.NewOrderHandler(orderSvc, appLogger),
		httpport.NewNotificationHandler(notificationSvc, appLogger),
		cfg.JWT.Secret,
		appLogger,
	)
	server := httpport.NewServer(cfg.HTTPServer, router, appLogger)
	appLogger.Info("HTTP server instance created")

	return &App{
		cfg:         cfg,
		log:         appLogger,
		server:      server,
		mongoClient: mongoClient,
		redisClient: redisClient,
		natsConn:    natsConn,
	}, nil
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()
	a.log.Info("HTTP server started in a goroutine")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server graceful shutdown: %v", err)
	} else {
		a.log.Info("HTTP server stopped successfully")
	}

	a.log.Info("Closing external connections...")

	if a.natsConn != nil {
		a.natsConn.Close()
		a.log.Info("NATS connection closed")
	}

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		} else {
			a.log.Info("Redis client closed successfully")
		}
	}

	a.log.Info("Application shut down successfully")
}
