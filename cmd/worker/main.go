package main

import (
	"context"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/osintlab/osint-platform/internal/database"
	"github.com/osintlab/osint-platform/internal/worker"
	"github.com/osintlab/osint-platform/pkg/cache"
	"github.com/osintlab/osint-platform/pkg/config"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Int("concurrency", cfg.Worker.Concurrency).
		Str("queue", cfg.Worker.Queue).
		Msg("Starting collection worker")

	postgresDB, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer postgresDB.Close()

	if err := postgresDB.RunMigrations(context.Background(), database.Schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisDB, err := database.NewRedisDB(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisDB.Close()

	cacheInstance := cache.NewCache(redisDB.Client())

	collectors := worker.DefaultCollectors(cfg.Collector.TwitterAPIKey)
	handler := worker.NewHandler(postgresDB, redisDB, cacheInstance, collectors, cfg.Collector.DefaultMaxPosts)

	srv := worker.NewServer(&cfg.Redis, &cfg.Worker)

	mux := asynq.NewServeMux()
	handler.Register(mux)

	// Run blocks until SIGTERM/SIGINT and drains in-flight tasks
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("Worker stopped with error")
	}

	log.Info().Msg("Worker stopped gracefully")
}
