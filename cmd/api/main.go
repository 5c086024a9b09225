package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Deokive/BE-sub001/internal/domain/entity"
	handlerHttp "github.com/Deokive/BE-sub001/internal/handler/http"
	redisclient "github.com/Deokive/BE-sub001/internal/infrastructure/cache"
	"github.com/Deokive/BE-sub001/internal/infrastructure/config"
	database "github.com/Deokive/BE-sub001/internal/infrastructure/database"
	"github.com/Deokive/BE-sub001/internal/infrastructure/logger"
	"github.com/Deokive/BE-sub001/internal/infrastructure/metrics"
	"github.com/Deokive/BE-sub001/internal/infrastructure/rabbitmq"
	"github.com/Deokive/BE-sub001/internal/infrastructure/repository/mongodb"
	"github.com/Deokive/BE-sub001/internal/infrastructure/store"
	"github.com/Deokive/BE-sub001/internal/infrastructure/uuidgen"
	"github.com/Deokive/BE-sub001/internal/infrastructure/validator"
	"github.com/Deokive/BE-sub001/internal/scheduler"
	"github.com/Deokive/BE-sub001/internal/usecase"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.NewConfig()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	appLogger, zapLogger, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Establish MongoDB connection
	mongoClient, err := database.NewMongoDBClient(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect()
	db := mongoClient.Client.Database(cfg.MongoDBName)

	// Establish Redis connection
	rdb, err := redisclient.NewRedisFromURL(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisclient.Close(rdb)

	// Register custom validators
	validator.RegisterCustomValidators()

	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Dependency Injection: Repositories and cache store
	counterStore, err := store.NewCounterStore(rdb, cfg.RedisPrefix)
	if err != nil {
		log.Fatalf("Failed to initialize counter store: %v", err)
	}
	likeRepo := mongodb.NewLikeRepository(db)
	statsRepo := mongodb.NewStatsRepository(db)
	uuidGenerator := uuidgen.NewGenerator()

	// Dependency Injection: Messaging
	publisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.ExchangeName, zapLogger)
	if err != nil {
		log.Fatalf("Failed to initialize AMQP publisher: %v", err)
	}
	defer publisher.Close()

	applier := usecase.NewToggleEventApplier(likeRepo, appLogger, appMetrics)
	consumer, err := rabbitmq.NewConsumer(cfg.AMQPURL, func(ctx context.Context, delivery amqp.Delivery) error {
		return applier.ApplyJSON(ctx, delivery.Body)
	}, rabbitmq.ConsumerOptions{
		ExchangeName: cfg.ExchangeName,
		QueueName:    cfg.QueueName,
		RoutingKey:   usecase.ToggleRoutingKey,
		Prefetch:     cfg.Prefetch,
	}, zapLogger)
	if err != nil {
		log.Fatalf("Failed to initialize AMQP consumer: %v", err)
	}

	// Dependency Injection: Usecases
	warmer := usecase.NewWarmer(counterStore, uuidGenerator, appLogger, cfg.WarmLockWait, cfg.WarmLockLease, cfg.CounterTTL)
	likeUsecase := usecase.NewLikeUsecase(counterStore, likeRepo, warmer, publisher, uuidGenerator, appLogger, appMetrics, cfg.CounterTTL)
	viewUsecase := usecase.NewViewUsecase(counterStore, appLogger, appMetrics, cfg.ViewCooldown, cfg.CounterTTL)
	statsUsecase := usecase.NewStatsUsecase(statsRepo, appLogger)

	// Background jobs: one write-back and one hot-score runner per domain
	runners := []*scheduler.Runner{
		scheduler.NewRunner(
			scheduler.NewWriteBackJob(entity.DomainPost, counterStore, statsRepo, appLogger, appMetrics, cfg.FlushBatchLimit),
			cfg.FlushIntervalPost, appLogger, appMetrics),
		scheduler.NewRunner(
			scheduler.NewWriteBackJob(entity.DomainArchive, counterStore, statsRepo, appLogger, appMetrics, cfg.FlushBatchLimit),
			cfg.FlushIntervalArchive, appLogger, appMetrics),
		scheduler.NewRunner(
			scheduler.NewHotScoreJob(entity.DomainPost, statsRepo, appLogger, cfg.HotScoreWeightsPost, cfg.HotScoreWindow, cfg.HotScorePenalty),
			cfg.HotScoreIntervalPost, appLogger, appMetrics),
		scheduler.NewRunner(
			scheduler.NewHotScoreJob(entity.DomainArchive, statsRepo, appLogger, cfg.HotScoreWeightsArchive, cfg.HotScoreWindow, cfg.HotScorePenalty),
			cfg.HotScoreIntervalArchive, appLogger, appMetrics),
	}
	for _, r := range runners {
		r.Start()
	}

	// Initialize Gin router
	router := gin.Default()
	appRouter := handlerHttp.NewRouter(
		handlerHttp.NewInteractionHandler(likeUsecase, viewUsecase, statsUsecase),
		handlerHttp.NewAdminHandler(runners...),
		handlerHttp.NewHealthHandler(rdb, mongoClient.Client),
		cfg,
	)
	appRouter.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		appLogger.Infof("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown: stop accepting requests, then stop jobs, then drain
	// the publish buffer, then close the consumer.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("server shutdown: %v", err)
	}
	for _, r := range runners {
		r.Stop()
	}
	likeUsecase.Close()
	if err := consumer.Shutdown(); err != nil {
		appLogger.Errorf("consumer shutdown: %v", err)
	}
}
