package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/virouzrx/petfood-verifai/internal/application"
	appanalyses "github.com/virouzrx/petfood-verifai/internal/application/analyses"
	"github.com/virouzrx/petfood-verifai/internal/config"
	"github.com/virouzrx/petfood-verifai/internal/domain/analyses"
	"github.com/virouzrx/petfood-verifai/internal/domain/products"
	openaiclient "github.com/virouzrx/petfood-verifai/internal/infra/ai/openai"
	"github.com/virouzrx/petfood-verifai/internal/infra/cache"
	mysqldb "github.com/virouzrx/petfood-verifai/internal/infra/db/mysql"
	postgresdb "github.com/virouzrx/petfood-verifai/internal/infra/db/postgres"
	"github.com/virouzrx/petfood-verifai/internal/infra/httpserver"
	"github.com/virouzrx/petfood-verifai/internal/infra/scraper"
	minioStore "github.com/virouzrx/petfood-verifai/internal/infra/storage"
	"github.com/virouzrx/petfood-verifai/internal/middleware"
)

func main() {
	// .env is optional; real env always wins
	_ = godotenv.Load()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// connect database (postgres by default, mysql as alternate)
	var (
		db           *sql.DB
		productRepo  products.Repository
		analysisRepo analyses.Repository
		failureRepo  analyses.FailureRecorder
	)
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqldb.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			logger.Fatal("mysql connect error", zap.Error(err))
		}
		productRepo = mysqldb.NewProductRepository(db)
		analysisRepo = mysqldb.NewAnalysisRepository(db)
		failureRepo = mysqldb.NewFailureRepository(db)
	default:
		db, err = postgresdb.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logger.Fatal("postgres connect error", zap.Error(err))
		}
		productRepo = postgresdb.NewProductRepository(db)
		analysisRepo = postgresdb.NewAnalysisRepository(db)
		failureRepo = postgresdb.NewFailureRepository(db)
	}
	defer db.Close()

	// init scrape cache (optional)
	scrapeCache, err := cache.New(ctx, cfg.Cache.Enabled, cfg.Cache.Addr, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	if err != nil {
		logger.Fatal("redis init error", zap.Error(err))
	}

	// init snapshot store (optional)
	var snapshots analyses.SnapshotStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			logger.Fatal("minio init error", zap.Error(err))
		}
		snapshots = store
	}

	// init service
	svc := &appanalyses.Service{
		Products: productRepo,
		Analyses: analysisRepo,
		Failures: failureRepo,
		Scraper:  scraper.New(time.Duration(cfg.Scraper.TimeoutSeconds)*time.Second, cfg.Scraper.UserAgent),
		Analyzer: openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, time.Duration(cfg.OpenAI.TimeoutSeconds)*time.Second),
		Cache:    scrapeCache,
		Snapshots: snapshots,
		Clock:    application.SystemClock{},
		Log:      logger,
	}

	// init router
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Capacity > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
	}
	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}
	handler := httpserver.NewRouter(svc, logger, cfg.Auth.APIKeys, limiter, cfg.CORS.AllowedOrigins, checkers)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
