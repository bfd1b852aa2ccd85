package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/umeloans/loan-wizard/internal/config"
	"github.com/umeloans/loan-wizard/internal/crm"
	"github.com/umeloans/loan-wizard/internal/crm/crmmock"
	"github.com/umeloans/loan-wizard/internal/handler"
	"github.com/umeloans/loan-wizard/internal/repository"
	"github.com/umeloans/loan-wizard/internal/service"
	"github.com/umeloans/loan-wizard/internal/session"
	"github.com/umeloans/loan-wizard/pkg/logger"
	"github.com/umeloans/loan-wizard/pkg/response"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zlog.Sync()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize the archive database (optional)
	var db *sqlx.DB
	var appRepo repository.ApplicationRepository
	if cfg.Database.URL != "" {
		db, err = initDB(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		appRepo = repository.NewApplicationRepository(db)
	} else {
		zlog.Warn("no archive database configured, submitted applications will not be archived")
	}

	// Initialize session gateway and CRM client
	gateway := session.NewRedisGateway(redisClient, cfg.Session.KeyPrefix, cfg.GetSessionExpiry())
	crmClient := crm.NewClient(cfg.CRM.BaseURL, cfg.GetCRMTimeout(), zlog)

	// Initialize service and handlers
	wizardService := service.NewWizardService(gateway, crmClient, appRepo, zlog)
	wizardHandler := handler.NewWizardHandler(wizardService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(cfg, zlog, wizardHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("addr", server.Addr), zap.Bool("demo_mode", cfg.Demo.Enabled))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	zlog.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(cfg *config.Config, zlog *zap.Logger, wizardHandler *handler.WizardHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.CORSMiddleware)
	router.Use(response.LoggingMiddleware(zlog))

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// Wizard API
	api := router.PathPrefix("/api/v1").Subrouter()
	wizardHandler.Register(api)

	// Demo mode mounts the mock CRM on the same server
	if cfg.Demo.Enabled {
		mock := crmmock.New(zlog, cfg.Demo.FailureRate, cfg.GetDemoDelay())
		mock.Register(router.PathPrefix("/api").Subrouter())
	}

	return router
}
