package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"certapi/internal/config"
	"certapi/internal/convert"
	"certapi/internal/database"
	"certapi/internal/database/migration"
	handlers "certapi/internal/http/handler"
	"certapi/internal/http/middleware"
	"certapi/internal/logging"
	"certapi/internal/mailer"
	"certapi/internal/metrics"
	tracing "certapi/internal/otel"
	"certapi/internal/publish"
	"certapi/internal/render"
	"certapi/internal/repository"
	"certapi/internal/repository/postgres"
	"certapi/internal/service"
	"certapi/internal/staging"
	"certapi/internal/storage"
)

const (
	bodyLimit       = 5 * 1024 * 1024
	shutdownTimeout = 15 * time.Second
)

// @title Certificate Generator API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.NewJSON(os.Stdout, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server_exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, log *logging.SlogLogger) error {
	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Metadata store is optional; without it GET /api/v1/certificates/:id answers 404.
	var (
		db   *sql.DB
		repo repository.CertificateRepository
	)
	if cfg.Database.Enabled() {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			return err
		}
		repo = postgres.NewCertificatePostgres(db)
	} else {
		log.Info(ctx, "metadata_store_disabled", "reason", "DB_HOST not set")
	}

	// Object storage is optional; a broken configuration disables publishing instead of failing startup.
	var store storage.Storage
	if cfg.Storage.Enabled() {
		s, err := storage.NewMinIO(cfg.Storage)
		if err != nil {
			log.Warn(ctx, "publishing_disabled", "error", err.Error())
		} else {
			store = s
		}
	} else {
		log.Info(ctx, "publishing_disabled", "reason", "STORAGE_ENDPOINT or credentials not set")
	}

	mail := mailer.NewSMTPMailer(cfg.SMTP, log)
	if err := mail.Ready(); err != nil {
		// requests fail fast with a ConfigurationError until SMTP is set up
		log.Warn(ctx, "mailer_not_configured", "error", err.Error())
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics, err := metrics.NewPipeline(reg)
	if err != nil {
		return err
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	svc := service.NewCertificateService(service.Deps{
		Renderer:   renderer,
		Converter:  convert.NewRodConverter(cfg.Browser, log),
		Stager:     staging.New(cfg.StagingDir),
		Publisher:  publish.New(store, cfg.Storage.UploadTimeout, log),
		Mailer:     mail,
		Repo:       repo,
		Metrics:    pipelineMetrics,
		Log:        log,
		IssuerName: cfg.IssuerName,
		BaseURL:    cfg.BaseURL,
	})

	app := fiber.New(fiber.Config{
		AppName:      "certapi",
		BodyLimit:    bodyLimit,
		ErrorHandler: handlers.ErrorHandler(!cfg.IsProduction()),
	})

	app.Use(fiberrecover.New(fiberrecover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(otelfiber.Middleware())
	app.Use(httpMetrics.Handler())
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(middleware.RateLimit(cfg.RateLimit))

	app.Get("/metrics", adaptor.HTTPHandler(
		otelhttp.NewHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}), "metrics"),
	))

	handlers.ConfigureSwagger(cfg.BaseURL, cfg.AppHost)
	handlers.RegisterRoutes(app, db, store, svc)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server_starting", "addr", addr, "env", cfg.Env)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "server_stopping")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
