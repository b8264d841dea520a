package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"docmark/internal/config"
	"docmark/internal/database"
	"docmark/internal/database/migration"
	"docmark/internal/grant"
	handlers "docmark/internal/http/handler"
	"docmark/internal/http/middleware"
	"docmark/internal/logger"
	"docmark/internal/otel"
	"docmark/internal/repository/postgres"
	"docmark/internal/service"
	"docmark/internal/storage"
)

// multipart framing on top of the largest accepted file
const bodyOverhead = 1 << 20

// @title Docmark API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.NewStdout(cfg.LogLevel, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("AUTH_JWT_SECRET is required")
	}

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	// Initialize reusable object storage client (MinIO or S3)
	objStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	reg := prometheus.DefaultRegisterer
	grants := grant.NewIssuer(objStore, grant.WithLogger(log), grant.WithRegisterer(reg))

	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithMaxUploadSize(cfg.Upload.MaxSize),
		service.WithUpstreamTimeout(cfg.UpstreamTimeout),
	}

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	docSvc := service.NewDocumentService(objStore, docRepo, grants, svcOpts...)
	hlSvc := service.NewHighlightService(docRepo, svcOpts...)

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             int(cfg.Upload.MaxSize) + bodyOverhead,
		DisableStartupMessage: true,
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	// Register global middleware
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, docSvc, hlSvc, handlers.RouteOptions{
		JWTSecret:     []byte(cfg.Auth.JWTSecret),
		MaxUploadSize: cfg.Upload.MaxSize,
		UploadRPS:     cfg.Upload.RatePerSec,
		UploadBurst:   cfg.Upload.RateBurst,
		Gatherer:      prometheus.DefaultGatherer,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", handlers.SwaggerUI())

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("storage_driver", cfg.Storage.Driver).Msg("server_starting")

	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
