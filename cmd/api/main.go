package main

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"intakeapi/internal/audit"
	"intakeapi/internal/config"
	"intakeapi/internal/database"
	"intakeapi/internal/database/migration"
	"intakeapi/internal/event"
	"intakeapi/internal/http/handler"
	"intakeapi/internal/http/middleware"
	"intakeapi/internal/notify"
	"intakeapi/internal/otel"
	"intakeapi/internal/repository/postgres"
	"intakeapi/internal/service"
	"intakeapi/internal/storage"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()

	shutdownTracing, err := otel.Init(context.Background(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migration.EnsureMigrated(migrateCtx, db, log); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	cancel()

	// Blob storage is optional. Without it uploads keep their metadata rows
	// and the files are expected to arrive through another channel.
	var objStore storage.Storage
	if cfg.MinIO.Endpoint != "" {
		objStore, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize object storage")
		}
	} else {
		log.Warn().Msg("object storage not configured, documents persist metadata only")
	}

	// Notifications are optional too. Dispatch failures never propagate, so a
	// missing broker only silences outbound mail.
	var dispatcher notify.Dispatcher
	if cfg.NATS.URL != "" {
		natsDispatcher, err := notify.NewNATSDispatcher(cfg.NATS.URL, "")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsDispatcher.Close()
		dispatcher = natsDispatcher
	} else {
		log.Warn().Msg("nats not configured, notifications disabled")
	}

	bus := event.NewBus()
	bus.Subscribe(notify.NewSubscriber(dispatcher, log).HandleEvent)

	metrics, err := service.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	auditor := audit.NewRecorder(postgres.NewAuditPostgres(db), log)
	docSvc := service.NewDocumentService(objStore, postgres.NewDocumentPostgres(db), auditor, bus, metrics, log)
	appSvc := service.NewApplicationService(postgres.NewApplicationPostgres(db), auditor, bus, metrics, nil, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: handler.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(otelfiber.Middleware())

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handler.New(db, docSvc, appSvc, auditor).Register(app)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
