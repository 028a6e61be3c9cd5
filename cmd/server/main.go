package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/imcoderdev/emergency-backend/internal/config"
	v1 "github.com/imcoderdev/emergency-backend/internal/handler/http/v1"
	"github.com/imcoderdev/emergency-backend/internal/notify"
	"github.com/imcoderdev/emergency-backend/internal/observability"
	"github.com/imcoderdev/emergency-backend/internal/oracle"
	"github.com/imcoderdev/emergency-backend/internal/realtime"
	"github.com/imcoderdev/emergency-backend/internal/repository"
	"github.com/imcoderdev/emergency-backend/internal/service"
	"github.com/imcoderdev/emergency-backend/internal/webhook"
	"github.com/imcoderdev/emergency-backend/pkg/logger"
	"github.com/imcoderdev/emergency-backend/pkg/postgres"
	redisclient "github.com/imcoderdev/emergency-backend/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/imcoderdev/emergency-backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Emergency Incident Triage API
// @version 1.0
// @description Incident report intake with duplicate detection and a priority-ranked response queue.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
	log.Info("Server gracefully stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	// Запуск миграций
	log.Info("Running database migrations...")
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	log.Info("Database migrations applied successfully")

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Рассылка событий
	hub := realtime.NewHub(metrics.RealtimeClients, log)
	defer hub.Close()

	fanout := notify.NewFanout(metrics, log)
	fanout.Add("realtime", hub)
	if cfg.WebhookURL != "" {
		fanout.Add("webhook", webhook.NewRedisWebhookPublisher(redisClient))
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := notify.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := kafkaSink.Close(); err != nil {
				log.WithError(err).Warn("Failed to close kafka writer")
			}
		}()
		fanout.Add("kafka", kafkaSink)
		log.WithField("topic", cfg.KafkaTopic).Info("Kafka event sink enabled")
	}

	// Оракул подключается только при наличии адреса
	var similarity service.SimilarityOracle
	if cfg.OracleURL != "" {
		similarity = oracle.NewClient(cfg.OracleURL, cfg.OracleAPIKey, cfg.OracleTimeout, cfg.OracleMinInterval)
		log.Info("Similarity oracle enabled")
	}

	// Инициализация репозиториев
	incidentRepo := repository.NewIncidentRepository(dbpool, redisClient, cfg.IncidentCacheTTL)

	// Инициализация сервисов
	incidentService := service.NewIncidentService(incidentRepo, similarity, fanout, log, cfg, metrics, clock)

	// Инициализация хэндлеров
	handler := v1.NewHandler(incidentService, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	router.GET("/ws", hub.ServeWS)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("HTTP server started on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting HTTP server: %w", err)
		}
		return nil
	})

	if cfg.WebhookURL != "" {
		worker := webhook.NewWebhookWorker(redisClient, log, cfg, metrics, clock)
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Received shutdown signal, shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
