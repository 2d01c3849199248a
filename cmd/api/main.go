package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/GTDGit/gtd_storefront/internal/cache"
	"github.com/GTDGit/gtd_storefront/internal/checkout"
	"github.com/GTDGit/gtd_storefront/internal/config"
	"github.com/GTDGit/gtd_storefront/internal/database"
	"github.com/GTDGit/gtd_storefront/internal/handler"
	"github.com/GTDGit/gtd_storefront/internal/metrics"
	"github.com/GTDGit/gtd_storefront/internal/middleware"
	"github.com/GTDGit/gtd_storefront/internal/repository"
	"github.com/GTDGit/gtd_storefront/internal/server"
	"github.com/GTDGit/gtd_storefront/internal/service"
	"github.com/GTDGit/gtd_storefront/internal/sse"
	"github.com/GTDGit/gtd_storefront/internal/store"
	"github.com/GTDGit/gtd_storefront/internal/worker"
)

// main is the entrypoint for the GTD storefront API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env, cfg.Log)
	log.Info().Str("env", cfg.Env).Str("api_url", cfg.APIURL).Msg("starting gtd storefront")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3a. Optional ledger archive
	var archive service.LedgerArchive
	health := map[string]handler.Pinger{"redis": redisClient, "ledger": nil}
	if cfg.DB.Enabled() {
		db, err := database.Connect(ctx, &cfg.DB)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := runMigrations(db.DB); err != nil {
			log.Error().Err(err).Msg("migration failed")
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		log.Info().Msg("migrations completed successfully")

		ledger := repository.NewLedgerRepository(db)
		archive = ledger
		health["ledger"] = ledger
	} else {
		log.Warn().Msg("DB_HOST not set - transaction ledger archive disabled")
	}

	// 4. Initialize stores
	catalog := store.NewCatalogStore(store.SeedCatalogOptions())
	admin := store.NewAdminStore(store.SeedAdminOptions())
	sessions := store.NewSessionRegistry()
	adminSessions := store.NewAdminSessionRegistry()
	checkouts := checkout.NewManager(cfg.Checkout.SessionTTL, nil)

	// 5. Initialize services
	hub := sse.NewHub()
	m := metrics.New(cfg.Metrics, hub.ClientCount)

	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL, cache.NewTokenStore(redisClient))
	authSvc, err := service.NewAuthService(sessions, catalog, tokens, service.DemoCustomers())
	if err != nil {
		log.Fatal().Err(err).Msg("auth service initialization failed")
	}
	adminAuthSvc, err := service.NewAdminAuthService(adminSessions, admin, tokens, service.DemoAdminPasswords())
	if err != nil {
		log.Fatal().Err(err).Msg("admin auth service initialization failed")
	}

	var uploader service.ImageUploader
	if s3Svc, err := service.NewS3Service(ctx, &cfg.S3); err != nil {
		log.Warn().Err(err).Msg("S3 service initialization failed - product image upload will be disabled")
	} else {
		uploader = s3Svc
	}

	catalogSvc := service.NewCatalogService(catalog)
	checkoutSvc := service.NewCheckoutService(catalog, admin, checkouts, service.CheckoutOptions{
		BankFee:      cfg.Checkout.BankFee,
		VoucherDelay: cfg.Checkout.VoucherDelay,
		Archive:      archive,
		Observer:     m,
	})
	dashboardSvc := service.NewDashboardService(catalog, admin)
	adminCatalogSvc := service.NewAdminCatalogService(admin, adminAuthSvc, uploader)

	// Game accounts are private to their owner and never broadcast.
	detach := sse.Attach(sse.NewHubNotifier(hub, store.TopicGameAccounts), catalog, admin)
	defer detach()

	// 6. Initialize handlers
	limiter := middleware.NewInvalidAuthRateLimiter(5, time.Minute)
	go limiter.Cleanup(ctx, time.Minute)

	handlers := &server.Handlers{
		Health:           handler.NewHealthHandler(health),
		Config:           handler.NewConfigHandler(cfg.APIURL),
		Auth:             handler.NewAuthHandler(authSvc, limiter),
		Product:          handler.NewProductHandler(catalogSvc),
		GameAccount:      handler.NewGameAccountHandler(catalogSvc),
		Checkout:         handler.NewCheckoutHandler(checkoutSvc),
		Transaction:      handler.NewTransactionHandler(catalogSvc),
		AdminAuth:        handler.NewAdminAuthHandler(adminAuthSvc, limiter),
		AdminTransaction: handler.NewAdminTransactionHandler(dashboardSvc),
		AdminCatalog:     handler.NewAdminCatalogHandler(adminCatalogSvc),
		SSE:              handler.NewSSEHandler(hub, adminAuthSvc),
	}

	// 7. Initialize middleware
	mws := &server.Middlewares{
		Auth:      middleware.NewAuthMiddleware(authSvc, limiter),
		AdminAuth: middleware.NewAdminAuthMiddleware(adminAuthSvc, limiter),
	}

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.New(handlers, mws, server.Options{
		CORSHosts: cfg.CORSHosts,
		Metrics:   m,
	})

	// 9. Start workers
	go worker.NewDashboardWorker(dashboardSvc, cfg.Worker.DashboardInterval).Start(ctx)
	go worker.NewCheckoutSweepWorker(checkouts, cfg.Worker.SweepInterval).Start(ctx)

	// 10. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 11. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 12. Cancel context to stop workers and SSE streams
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func setupLogger(env string, cfg config.LogConfig) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}
