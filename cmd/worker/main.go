package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"portfolioX/internal/branding"
	"portfolioX/internal/config"
	"portfolioX/internal/database"
	"portfolioX/internal/export"
	"portfolioX/internal/metrics"
	"portfolioX/internal/preview"
	"portfolioX/internal/scan"
	"portfolioX/internal/storage"
	"portfolioX/internal/tasks"
	"portfolioX/internal/worker"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	log.Println("database connection ready for worker")

	storageClient, err := storage.NewClient(cfg.MinIO, cfg.Export.ArchiveTTL)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	log.Printf("storage client ready, bucket=%s", cfg.MinIO.Bucket)

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	exporterOpts := export.Options{
		Logger:        logger,
		MaxImageBytes: cfg.Export.MaxImageBytes,
		Concurrency:   cfg.Export.Concurrency,
	}
	if cfg.Export.MinifyGuard {
		exporterOpts.Minifier = branding.EsbuildMinifier{}
	}
	if s := scan.NewClamdScanner(cfg.Clamd.Address); s != nil {
		exporterOpts.Scanner = s
	}

	var previewer worker.Previewer
	if cfg.Export.PreviewEnabled {
		previewer = preview.NewRenderer(logger)
	}

	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
	})

	exportHandler := worker.NewExportTaskHandler(
		database.NewJobStore(db),
		export.New(exporterOpts),
		storageClient,
		redisClient,
		previewer,
		logger,
	)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypePortfolioExport, exportHandler)

	logger.Info("worker service started", slog.String("redis_addr", redisAddr))
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
