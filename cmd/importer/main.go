package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/meeeeeooooowwwwwww/updates/internal/config"
	"github.com/meeeeeooooowwwwwww/updates/internal/importer"
	"github.com/meeeeeooooowwwwwww/updates/internal/service"
	"github.com/meeeeeooooowwwwwww/updates/internal/storage/d1"
	"github.com/meeeeeooooowwwwwww/updates/internal/storage/postgres"
	"github.com/meeeeeooooowwwwwww/updates/internal/storage/sqlgen"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	corpusPath := flag.String("file", "warroom_videos.json", "path to the staged corpus JSON")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

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
	default:
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		sink = postgres.NewSink(db)
	}

	normalizer := service.NewNormalizer(cfg.Sync.Platform, cfg.Sync.SourceType)
	writer := service.NewBatchWriter(sink, dialect, cfg.Sync.BatchSize, logger)
	imp := importer.New(normalizer, writer, logger)

	if _, err := imp.Run(context.Background(), *corpusPath); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
}
