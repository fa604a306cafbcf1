package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/five-in-a-row/backend/internal/config"
	"github.com/iamasit07/five-in-a-row/backend/internal/repository/postgres"
	redisrepo "github.com/iamasit07/five-in-a-row/backend/internal/repository/redis"
	"github.com/iamasit07/five-in-a-row/backend/internal/service/cleanup"
	"github.com/iamasit07/five-in-a-row/backend/internal/service/game"
	transportHttp "github.com/iamasit07/five-in-a-row/backend/internal/transport/http"
	"github.com/iamasit07/five-in-a-row/backend/internal/transport/http/middleware"
	"github.com/iamasit07/five-in-a-row/backend/internal/transport/websocket"
	"github.com/iamasit07/five-in-a-row/backend/pkg/auth"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	cfg := config.LoadConfig()

	// 1. Persistence (optional): archived games in Postgres
	var gameRepo game.GameRepository
	var historyRepo game.HistoryRepository
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()

		log.Println("Running database migrations...")
		if err := postgres.RunMigrations(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Database migration completed successfully")

		repo := postgres.NewGameRepo(db)
		gameRepo = repo
		historyRepo = repo
	} else {
		log.Println("DATABASE_URL not set, finished games will not be archived")
	}

	// 2. Snapshot cache (optional): Redis
	var snapshots game.SnapshotStore
	if cfg.RedisAddr != "" {
		client, err := redisrepo.Connect(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Printf("[REDIS] %v", err)
		}
		if client != nil {
			defer client.Close()
			snapshots = redisrepo.NewSnapshotCache(client, cfg.SnapshotTTL)
		}
	}

	// 3. Services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.PlayerTokenTTL)
	connManager := websocket.NewConnectionManager()
	sessionManager := game.NewSessionManager(gameRepo, snapshots, connManager, game.Options{
		DefaultDepth: cfg.SearchDepth,
		AIMoveDelay:  cfg.AIMoveDelay,
	})
	gameService := game.NewService(historyRepo)

	// 4. Background workers
	cleanupWorker := cleanup.NewWorker(sessionManager, cfg.SessionIdleTimeout)
	cleanupWorker.Start()
	defer cleanupWorker.Stop()

	// 5. Router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	transportHttp.RegisterRoutes(router, transportHttp.Handlers{
		Games:   transportHttp.NewGameHandler(sessionManager, tokens),
		History: transportHttp.NewHistoryHandler(gameService),
		Watch:   transportHttp.NewWatchHandler(sessionManager),
		Tokens:  tokens,
	})

	wsHandler := websocket.NewHandler(connManager, sessionManager, tokens, cfg.AllowedOrigins)
	router.GET("/ws", wsHandler.HandleWebSocket)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": sessionManager.Count()})
	})

	// Serve static frontend files (SPA fallback)
	if _, err := os.Stat("./static"); err == nil {
		router.Static("/assets", "./static/assets")
		router.GET("/", func(c *gin.Context) {
			c.File("./static/index.html")
		})
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.HasPrefix(c.Request.URL.Path, "/assets/") {
				c.Status(http.StatusNotFound)
				return
			}
			c.File("./static/index.html")
		})
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
