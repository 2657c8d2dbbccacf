package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/database"
	"github.com/taskdeck/taskdeck/internal/handler"
	"github.com/taskdeck/taskdeck/internal/metrics"
	"github.com/taskdeck/taskdeck/internal/middleware"
	"github.com/taskdeck/taskdeck/internal/sessionwatch"
	"github.com/taskdeck/taskdeck/internal/store"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	log.Println("Running database migrations...")
	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Seed database with the bootstrap admin, if configured
	if err := db.Seed(cfg); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	// Create store
	s := store.New(db.DB)

	// Session-change broker for SSE
	broker := sessionwatch.NewBroker()

	// Prometheus collector
	collector := metrics.NewCollector()

	// Initialize handlers
	h := handler.New(s, cfg, broker, collector)

	// Sweep expired sessions in the background
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go h.AuthService().SweepExpiredSessions(sweepCtx, time.Hour)

	// Rate limiter for the auth endpoints
	authLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus metrics endpoint
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	// Auth routes (no auth required, rate limited)
	r.Route("/auth", func(r chi.Router) {
		r.Use(authLimiter.Limit)
		r.Post("/signup", h.AuthSignUp)
		r.Post("/login", h.AuthLogin)
		r.Post("/logout", h.AuthLogout)
		r.Get("/verify", h.AuthVerify)
		r.With(middleware.Auth(h.AuthService(), h.ProfileService())).Get("/me", h.AuthMe)
	})

	// API routes (auth required)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(h.AuthService(), h.ProfileService()))

		// SSE events endpoint (no request timeout, long-lived)
		r.Get("/events", h.Events)

		// Tasks
		r.Route("/tasks", func(r chi.Router) {
			r.Use(chimiddleware.Timeout(60 * time.Second))
			r.Get("/", h.TasksList)
			r.Post("/", h.TasksCreate)
			r.Post("/{taskId}/status", h.TasksAdvanceStatus)
			r.Delete("/{taskId}", h.TasksDelete)
		})

		// Partners
		r.Route("/partners", func(r chi.Router) {
			r.Use(chimiddleware.Timeout(60 * time.Second))
			r.Use(middleware.RequireAdmin)
			r.Get("/", h.PartnersList)
			r.Post("/", h.PartnersAdd)
			r.Delete("/{partnerId}", h.PartnersRemove)
		})

		// Dashboard stats
		r.With(chimiddleware.Timeout(60 * time.Second)).Get("/stats", h.StatsGet)
	})

	// Create server
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop background workers first
	stopSweep()
	authLimiter.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
