package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	recipon "github.com/Shugo117/recipon"
	"github.com/Shugo117/recipon/api"
	"github.com/Shugo117/recipon/db"
	"github.com/Shugo117/recipon/storage"
	"github.com/Shugo117/recipon/tracing"
)

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("recipon service initializing", "version", "1.0.0")

	// Initialize tracing
	tp, err := tracing.InitTracer("recipon")
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
		logger.Info("tracing initialized successfully")
	}

	// Defaults from environment
	defaultPort := getEnv("PORT", "8080")
	defaultStoragePath := getEnv("STORAGE_BASE_PATH", "./storage")

	// Command-line flags (override environment variables)
	port := flag.String("port", defaultPort, "Server port")
	storagePath := flag.String("storage-path", defaultStoragePath, "Thumbnail storage directory")
	fetchTimeout := flag.Duration("fetch-timeout", 3*time.Second, "Deadline for a single page fetch")
	cacheSize := flag.Int("cache-size", 512, "Capacity of each lookup cache")
	disableCORS := flag.Bool("disable-cors", false, "Disable CORS")
	flag.Parse()

	// PostgreSQL database configuration (required)
	dbHost := getEnv("DB_HOST", "")
	if dbHost == "" {
		logger.Error("DB_HOST environment variable is required")
		os.Exit(1)
	}

	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "recipon")
	dbPassword := getEnv("DB_PASSWORD", "recipon_dev_pass")
	dbName := getEnv("DB_NAME", "recipon")

	dbConfig := db.Config{
		DSN: fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort, dbUser, dbPassword, dbName),
	}
	logger.Info("using PostgreSQL database", "host", dbHost, "port", dbPort, "database", dbName)

	enrichConfig := recipon.DefaultConfig()
	enrichConfig.FetchTimeout = *fetchTimeout
	enrichConfig.CacheSize = *cacheSize

	config := api.Config{
		Addr:          ":" + *port,
		DBConfig:      dbConfig,
		EnrichConfig:  enrichConfig,
		StorageConfig: storage.Config{BasePath: *storagePath},
		CORSEnabled:   !*disableCORS,
	}

	// S3-compatible thumbnail storage when configured
	if getEnv("STORAGE_BACKEND", "filesystem") == "s3" {
		s3Backend, err := storage.NewS3Storage(context.Background(), storage.S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getEnv("S3_USE_PATH_STYLE", "") == "true",
		})
		if err != nil {
			logger.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		config.Backend = s3Backend
		logger.Info("using S3 thumbnail storage", "bucket", getEnv("S3_BUCKET", ""))
	}

	server, err := api.NewServer(config)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Start server in a goroutine
	go func() {
		logger.Info("recipon service starting",
			"port", *port,
			"database_host", dbHost,
			"database_name", dbName,
			"storage_path", *storagePath,
			"fetch_timeout", *fetchTimeout,
			"cache_size", *cacheSize,
		)

		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
