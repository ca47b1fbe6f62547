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

	"github.com/edufin/financing-engine/internal/config"
	"github.com/edufin/financing-engine/internal/handler"
	"github.com/edufin/financing-engine/internal/repository"
	"github.com/edufin/financing-engine/internal/service"
	"github.com/edufin/financing-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Seed demo data once at startup, guarded by a persisted marker
	if cfg.Business.SeedDemoData {
		if err := repository.NewSeeder(db).EnsureSeeded(context.Background()); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	// Initialize repositories
	appRepo := repository.NewApplicationRepository(db)
	planRepo := repository.NewPlanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	userRepo := repository.NewUserRepository(db)
	tx := repository.NewTransactor(db)

	// Initialize services
	applicationService := service.NewApplicationService(appRepo, planRepo, schoolRepo, userRepo, tx, cfg)
	paymentService := service.NewPaymentService(planRepo, paymentRepo, tx, redisClient, cfg)
	planService := service.NewPlanService(planRepo, paymentRepo, schoolRepo, userRepo, redisClient, cfg)
	catalogService := service.NewCatalogService(schoolRepo)

	// Initialize handlers
	applicationHandler := handler.NewApplicationHandler(applicationService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	planHandler := handler.NewPlanHandler(planService)
	schoolHandler := handler.NewSchoolHandler(catalogService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(applicationHandler, planHandler, paymentHandler, schoolHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	applicationHandler *handler.ApplicationHandler,
	planHandler *handler.PlanHandler,
	paymentHandler *handler.PaymentHandler,
	schoolHandler *handler.SchoolHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/applications", applicationHandler.Submit).Methods("POST")
	api.HandleFunc("/applications", applicationHandler.List).Methods("GET")
	api.HandleFunc("/applications/{id}", applicationHandler.Get).Methods("GET")
	api.HandleFunc("/applications/{id}/decision", applicationHandler.Decide).Methods("PUT")

	api.HandleFunc("/plans", planHandler.List).Methods("GET")
	api.HandleFunc("/plans/{id}", planHandler.Get).Methods("GET")
	api.HandleFunc("/plans/{id}/progress", planHandler.Progress).Methods("GET")
	api.HandleFunc("/plans/{id}/payments", paymentHandler.Record).Methods("POST")

	api.HandleFunc("/schools", schoolHandler.List).Methods("GET")
	api.HandleFunc("/schools/{id}", schoolHandler.Get).Methods("GET")

	return router
}
