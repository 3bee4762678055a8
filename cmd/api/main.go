// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Marga-Ghale/ora-chat-backend/internal/api/handlers"
	"github.com/Marga-Ghale/ora-chat-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-chat-backend/internal/cache"
	"github.com/Marga-Ghale/ora-chat-backend/internal/config"
	"github.com/Marga-Ghale/ora-chat-backend/internal/cron"
	"github.com/Marga-Ghale/ora-chat-backend/internal/db"
	"github.com/Marga-Ghale/ora-chat-backend/internal/notification"
	"github.com/Marga-Ghale/ora-chat-backend/internal/presence"
	"github.com/Marga-Ghale/ora-chat-backend/internal/repository"
	"github.com/Marga-Ghale/ora-chat-backend/internal/seed"
	"github.com/Marga-Ghale/ora-chat-backend/internal/service"
	"github.com/Marga-Ghale/ora-chat-backend/internal/socket"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	envErr := godotenv.Load()

	// ============================================
	// Load configuration
	// ============================================
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := newLogger(cfg)
	defer log.Sync()

	if envErr != nil {
		log.Info("no .env file found, using environment variables")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	if err := db.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ============================================
	// Initialize PostgreSQL (pgxpool + sqlx)
	// ============================================
	pg, err := db.NewPostgresDB(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pg.Close()

	repos := repository.NewRepositories(pg.Pool, pg.SQL)

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var onlineCache *cache.OnlineCache
	if cfg.RedisURL != "" {
		redisDB, err := db.NewRedisDB(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn("redis unavailable, continuing without online cache", zap.Error(err))
		} else {
			defer redisDB.Close()
			onlineCache = cache.NewOnlineCache(redisDB.Client)
		}
	}

	// ============================================
	// Presence, WebSocket Hub and Dispatcher
	// ============================================
	registry := presence.NewRegistry()
	hub := socket.NewHub(registry, onlineCache, log)
	go hub.Run(ctx)
	dispatcher := notification.NewDispatcher(registry, hub, log)

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:   cfg,
		Repos:    repos,
		Notifier: dispatcher,
		Presence: registry,
		Logger:   log,
	})

	// ============================================
	// Seed Data (for development)
	// ============================================
	if !cfg.IsProduction() {
		if err := seed.SeedData(ctx, repos, log); err != nil {
			log.Warn("seeding failed", zap.Error(err))
		}
	}

	// ============================================
	// Initialize Handlers
	// ============================================
	h := handlers.NewHandlers(services, registry)
	wsHandler := socket.NewHandler(hub, services.Auth, cfg.CORSOrigins, cfg.WSSendBuffer, log)

	var cachePinger handlers.Pinger
	var cacheResync cron.Resyncer
	if onlineCache != nil {
		cachePinger = onlineCache
		cacheResync = onlineCache
	}
	healthHandler := handlers.NewHealthHandler(pg, cachePinger, hub)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	scheduler := cron.NewScheduler(services.Audit, cacheResync, hub, cfg.LogRetentionDays, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", healthHandler.Check)

	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// WebSocket route authenticates itself from ?token=
		api.GET("/ws", wsHandler.HandleWebSocket)

		// ============================================
		// Protected routes (require auth middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth, log))
		{
			users := protected.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
			}

			groups := protected.Group("/groups")
			{
				groups.POST("", h.Group.Create)
				groups.GET("/history", h.Group.History)
				groups.GET("/:id", h.Group.Get)

				// Invitations
				groups.POST("/invite", h.Group.Invite)
				groups.POST("/respond/:groupId", h.Group.Respond)
				groups.POST("/decline/:groupId", h.Group.Decline)
				groups.POST("/cancel/:groupId", h.Group.CancelInvite)
			}

			messages := protected.Group("/messages")
			{
				messages.POST("/send", h.Message.Send)
				messages.GET("/receiver/:receiverId", h.Message.ListForReceiver)
				messages.DELETE("/:id", h.Message.Delete)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly(services.User, log))
			{
				admin.GET("/users", h.Admin.ListUsers)
				admin.GET("/messages", h.Admin.ListMessages)
				admin.GET("/online", h.Admin.OnlineUsers)
				admin.GET("/logs", h.Admin.ListAuditLogs)
			}
		}
	}

	// Create server
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	log.Info("server exited")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if cfg.IsProduction() {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return log
}
