package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/meeeeeooooowwwwwww/updates/internal/config"
	"github.com/meeeeeooooowwwwwww/updates/internal/publisher"
	"github.com/meeeeeooooowwwwwww/updates/internal/scheduler"
	"github.com/meeeeeooooowwwwwww/updates/internal/service"
	"github.com/meeeeeooooowwwwwww/updates/internal/source/rumble"
	"github.com/meeeeeooooowwwwwww/updates/internal/storage/d1"
	"github.com/meeeeeooooowwwwwww/updates/internal/storage/postgres"
	"github.com/meeeeeooooowwwwwww/updates/internal/storage/sqlgen"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single sync pass and exit")
	strategy := flag.String("strategy", string(service.StopAtBoundary), "diff strategy: stop_at_boundary or check_existing")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	// Select sink driver
	var sink service.Sink
	dialect := sqlgen.Postgres
	switch cfg.Sync.SinkDriver {
	case "d1":
		dialect = sqlgen.SQLite
		sink = d1.NewSink(d1.Config{
			Binary:   cfg.D1.Binary,
			Database: cfg.D1.Database,
			Remote:   cfg.D1.Remote,
		}, logger)
		logger.Info("using d1 sink", "database", cfg.D1.Database)
	default:
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		logger.Info("connected to database")
		sink = postgres.NewSink(db)
	}

	// Initialize RabbitMQ publisher
	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	// Initialize rumble source
	source, err := rumble.New(rumble.Config{
		ListingURL: cfg.Scrape.ListingURL,
		Timeout:    cfg.Scrape.Timeout,
		Headless:   cfg.Scrape.Headless,
		BrowserBin: cfg.Scrape.BrowserBin,
	}, logger)
	if err != nil {
		logger.Error("failed to start browser", "error", err)
		os.Exit(1)
	}
	defer source.Close()

	// Assemble the pipeline
	normalizer := service.NewNormalizer(cfg.Sync.Platform, cfg.Sync.SourceType)
	resolver := service.NewResolver(sink, logger)
	diffEngine := service.NewDiffEngine(service.BoundaryStrategy(*strategy), cfg.Sync.Platform, sink, logger)
	writer := service.NewBatchWriter(sink, dialect, cfg.Sync.BatchSize, logger)

	syncService := service.NewSyncService(
		source,
		resolver,
		diffEngine,
		normalizer,
		writer,
		pub,
		logger,
		cfg.Sync,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if *once {
		if _, err := syncService.Sync(ctx); err != nil {
			logger.Error("sync failed", "error", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("starting video syncer",
		"source", source.Name(),
		"interval", cfg.Sync.Interval,
		"max_pages", cfg.Sync.MaxPagesPerSync,
	)

	sched := scheduler.NewScheduler(syncService, cfg.Sync.Interval, logger)
	if err := sched.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
