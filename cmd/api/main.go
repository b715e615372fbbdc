package main

import (
	"context"
	"database/sql"
	"fmt"
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

	"github.com/precifica/precifica_api/internal/cache"
	"github.com/precifica/precifica_api/internal/config"
	"github.com/precifica/precifica_api/internal/database"
	"github.com/precifica/precifica_api/internal/handler"
	"github.com/precifica/precifica_api/internal/middleware"
	"github.com/precifica/precifica_api/internal/models"
	"github.com/precifica/precifica_api/internal/repository"
	"github.com/precifica/precifica_api/internal/service"
	"github.com/precifica/precifica_api/internal/store"
	"github.com/precifica/precifica_api/internal/utils"
	"github.com/precifica/precifica_api/internal/worker"
	"github.com/precifica/precifica_api/pkg/githubfs"
	"github.com/precifica/precifica_api/pkg/goldapi"
)

// main is the application entrypoint for the Precifica pricing API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting precifica api")

	utils.SetJWTSecret(cfg.JWTSecret)

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	quoteCache := cache.NewQuoteCache(redisClient)

	// 4. Initialize external API clients
	goldClient := goldapi.NewClient(goldapi.Config{BaseURL: cfg.Gold.BaseURL, Timeout: cfg.Gold.Timeout})
	fileClient := githubfs.NewClient(githubfs.Config{})

	// 5. Initialize repositories
	stateRepo := repository.NewStateRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	// 6. Initialize services
	catalogSvc := service.NewCatalogService(store.New(), stateRepo, cfg.PlatingFactor)
	feedSvc := service.NewPriceFeedService(goldClient, catalogSvc, quoteCache, cfg.Gold.Pair)
	syncSvc := service.NewSyncService(fileClient, catalogSvc, stateRepo, models.RemoteDescriptor{
		Owner: cfg.Remote.Owner,
		Repo:  cfg.Remote.Repo,
		Path:  cfg.Remote.Path,
		Token: cfg.Remote.Token,
	})
	authSvc := service.NewAuthService(adminRepo)

	// 6a. Restore persisted state before anything starts mutating it
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := catalogSvc.LoadState(startupCtx); err != nil {
		log.Error().Err(err).Msg("failed to restore catalog state")
	}
	if err := syncSvc.LoadState(startupCtx); err != nil {
		log.Error().Err(err).Msg("failed to restore remote descriptor")
	}
	feedSvc.Restore(startupCtx)
	startupCancel()

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:   handler.NewHealthHandler(catalogSvc),
		Auth:     handler.NewAuthHandler(authSvc),
		Product:  handler.NewProductHandler(catalogSvc),
		Gold:     handler.NewGoldHandler(catalogSvc, feedSvc),
		Sync:     handler.NewSyncHandler(syncSvc),
		Settings: handler.NewSettingsHandler(catalogSvc, syncSvc),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start the price feed worker
	go worker.NewPriceFeedWorker(feedSvc, cfg.Gold.RefreshInterval).Start(ctx)

	// 12. Start HTTP server
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

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Gold     *handler.GoldHandler
	Sync     *handler.SyncHandler
	Settings *handler.SettingsHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.POST("/v1/auth/login", handlers.Auth.Login)

	// Reading the grid is open; every mutation requires a session.
	router.GET("/v1/products", handlers.Product.ListProducts)
	router.GET("/v1/gold", handlers.Gold.GetQuote)

	v1 := router.Group("/v1")
	v1.Use(jwtMiddleware.Handle())
	{
		v1.POST("/products", handlers.Product.CreateProduct)
		v1.PATCH("/products/:id", handlers.Product.UpdateProductField)
		v1.DELETE("/products/:id", handlers.Product.DeleteProduct)
		v1.POST("/products/delete", handlers.Product.DeleteProducts)

		v1.POST("/gold/refresh", handlers.Gold.Refresh)

		v1.POST("/sync/pull", handlers.Sync.Pull)
		v1.POST("/sync/push", handlers.Sync.Push)

		v1.GET("/settings/factor", handlers.Settings.GetFactor)
		v1.PUT("/settings/factor", handlers.Settings.UpdateFactor)
		v1.GET("/settings/remote", handlers.Settings.GetRemote)
		v1.PUT("/settings/remote", handlers.Settings.UpdateRemote)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
