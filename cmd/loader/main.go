package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_service/internal/adapters/observability"
	"hotel_service/internal/app"
	"hotel_service/internal/domain"
	"hotel_service/internal/shared"
	mysqlrepo "hotel_service/internal/storage/mysql"
)

// loader bulk-creates hotels from a JSON array file (LOADER_FILE, or the
// first argument) through the same service the API uses.
func main() {
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := cfg.LoaderFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	log.Info().
		Str("file", path).
		Int("workers", cfg.LoaderWorkers).
		Msg("loader starting")

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("read input failed")
	}
	var hotels []domain.Hotel
	if err := json.Unmarshal(raw, &hotels); err != nil {
		log.Fatal().Err(err).Msg("input is not a JSON array of hotels")
	}

	if cfg.MySQLDSN == "" {
		log.Fatal().Msg("MYSQL_DSN is required for the loader")
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	svc := app.NewHotelService(mysqlrepo.New(db), observability.PromSink{})
	rep, err := app.ImportHotels(ctx, svc, hotels, cfg.LoaderWorkers)
	if err != nil {
		log.Warn().Err(err).Msg("loader interrupted")
	}
	log.Info().
		Int("created", len(rep.Created)).
		Int("failed", rep.Failed).
		Msg("load completed")
}
