package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/opsdash/internal/cache"
	"github.com/GTDGit/opsdash/internal/config"
	"github.com/GTDGit/opsdash/internal/database"
	"github.com/GTDGit/opsdash/internal/handler"
	"github.com/GTDGit/opsdash/internal/middleware"
	"github.com/GTDGit/opsdash/internal/photos"
	"github.com/GTDGit/opsdash/internal/repository"
	"github.com/GTDGit/opsdash/internal/service"
	"github.com/GTDGit/opsdash/internal/session"
)

// main is the entrypoint of the operations dashboard API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("driver", cfg.DB.Driver).Msg("starting opsdash")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations for the dashboard's own tables
	if cfg.DB.RunMigrations {
		if err := database.Migrate(db); err != nil {
			log.Error().Err(err).Msg("migration failed")
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		log.Info().Msg("migrations completed successfully")
	}

	// 3b. Connect to Redis when sessions live there
	var redisClient *cache.RedisClient
	if cfg.Session.Store == config.SessionStoreRedis {
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")
	}

	// 4. Session store and photo URL signer
	store, err := session.New(cfg.Session, redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("session store setup failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signer, err := photos.New(ctx, cfg.Photos)
	if err != nil {
		log.Fatal().Err(err).Msg("photo signer setup failed")
	}

	// 5. Initialize repositories
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	techRepo := repository.NewTechnicianRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// 6. Initialize services
	authSvc := service.NewAuthService(userRepo)
	clientSvc := service.NewClientService(clientRepo, orderRepo, invoiceRepo)
	techSvc := service.NewTechnicianService(techRepo, orderRepo)
	orderSvc := service.NewOrderService(orderRepo, clientRepo, techRepo, signer)
	financialSvc := service.NewFinancialService(invoiceRepo, clientRepo, settingRepo)
	dashboardSvc := service.NewDashboardService(statsRepo, orderRepo, invoiceRepo, clientRepo)

	if err := authSvc.EnsureBootstrapAdmin(ctx, cfg.Bootstrap); err != nil {
		log.Error().Err(err).Msg("bootstrap administrator setup failed")
	}

	// 7. Initialize middleware and handlers
	sessionMw := middleware.NewSessionMiddleware(store, cfg.Session.Lifetime, cfg.Session.CookieSecure)
	limiter := middleware.NewInvalidAuthRateLimiter()

	var redisHealth handler.Pinger
	if redisClient != nil {
		redisHealth = redisClient
	}

	handlers := &handler.Handlers{
		Health:     handler.NewHealthHandler(db, redisHealth, cfg.Version),
		Auth:       handler.NewAuthHandler(authSvc, sessionMw, limiter),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		Client:     handler.NewClientHandler(clientSvc),
		Technician: handler.NewTechnicianHandler(techSvc),
		Order:      handler.NewOrderHandler(orderSvc),
		Financial:  handler.NewFinancialHandler(financialSvc),
	}

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	handler.RegisterRoutes(router, handlers, sessionMw, limiter)

	// 9. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 10. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	// 11. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
