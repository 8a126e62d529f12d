package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"portfolioX/internal/api"
	"portfolioX/internal/branding"
	"portfolioX/internal/config"
	"portfolioX/internal/database"
	"portfolioX/internal/export"
	"portfolioX/internal/scan"
	"portfolioX/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	log.Printf("api bootstrapped with db host=%s port=%d db=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	log.Printf("database connection ready")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	log.Printf("database migrated")

	storageClient, err := storage.NewClient(cfg.MinIO, cfg.Export.ArchiveTTL)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer asynqClient.Close()

	var scanner export.ImageScanner
	if s := scan.NewClamdScanner(cfg.Clamd.Address); s != nil {
		scanner = s
	}

	exporterOpts := export.Options{
		Scanner:       scanner,
		Logger:        logger,
		MaxImageBytes: cfg.Export.MaxImageBytes,
		Concurrency:   cfg.Export.Concurrency,
	}
	if cfg.Export.MinifyGuard {
		exporterOpts.Minifier = branding.EsbuildMinifier{}
	}

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, api.Dependencies{
		Exporter:    export.New(exporterOpts),
		Jobs:        database.NewJobStore(db),
		Enqueuer:    asynqClient,
		Storage:     storageClient,
		RedisClient: redisClient,
		Scanner:     scanner,
		Logger:      logger,
		Export:      cfg.Export,
	})

	address := fmt.Sprintf(":%d", cfg.API.Port)
	log.Printf("api listening on %s", address)

	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
