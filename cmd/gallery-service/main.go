package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/cache"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/config"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/events"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/http/handlers/auth"
	mediaHandlers "github.com/GnandeepVenigalla/gd25th-backend/internal/http/handlers/media"
	uploadHandlers "github.com/GnandeepVenigalla/gd25th-backend/internal/http/handlers/upload"
	wsHandlers "github.com/GnandeepVenigalla/gd25th-backend/internal/http/handlers/websocket"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/http/middleware"
	mediaService "github.com/GnandeepVenigalla/gd25th-backend/internal/services/media"
	uploadService "github.com/GnandeepVenigalla/gd25th-backend/internal/services/upload"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/storage/mongo"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/utils/password"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/websocket"
)

func main() {
	// load config
	cfg := config.MustLoad()

	// object store setup
	store, err := mediaService.NewService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize object store:", err)
	}
	slog.Info("Connected to object store", slog.String("bucket", cfg.MinIO.BucketName))

	// catalog setup
	catalog, err := mongo.NewCatalog(cfg)
	if err != nil {
		log.Fatal("Failed to initialize media catalog:", err)
	}
	slog.Info("Connected to media catalog", slog.String("database", cfg.Mongo.Database))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cachedCatalog := cache.NewCatalogCache(catalog, redisClient)

	// real-time gallery updates
	hub := websocket.NewHub()
	go hub.Run()
	publisher := events.NewEventPublisher(hub)

	uploads := uploadService.NewService(
		store,
		cachedCatalog,
		publisher,
		time.Duration(cfg.Media.PresignedURLTTL)*time.Second,
	)

	// the shared gallery password is compared as a bcrypt hash
	passwordHash, err := password.HashPassword(cfg.GalleryPassword)
	if err != nil {
		log.Fatal("Failed to hash gallery password:", err)
	}

	uph := uploadHandlers.NewHandlers(uploads, cfg.Media.MaxFileSize, cfg.Media.MaxBatchFiles)
	authMW := middleware.AuthMiddleware(cfg.JWTSecret)
	rateLimits := middleware.NewRateLimitConfig(redisClient)

	// setup server
	router := http.NewServeMux()

	router.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Gallery service is running"))
	})
	router.Handle("POST /api/login", rateLimits.RateLimitedHandler("login", auth.Login(passwordHash, cfg.JWTSecret)))
	router.HandleFunc("GET /api/media", mediaHandlers.List(uploads))
	router.Handle("GET /api/media/orphans", authMW(mediaHandlers.Orphans(uploads)))
	router.Handle("POST /api/upload/start", authMW(rateLimits.RateLimitedHandler("upload-start", uph.Start())))
	router.Handle("POST /api/upload/get-part-url", authMW(uph.GetPartURL()))
	router.Handle("POST /api/upload/complete", authMW(uph.Complete()))
	router.Handle("POST /api/upload", authMW(uph.Upload()))
	router.HandleFunc("GET /ws", wsHandlers.Handler(hub, cfg.JWTSecret))

	handler := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})(router)

	server := http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	if err := catalog.Close(ctx); err != nil {
		slog.Error("failed to close catalog connection", slog.String("error", err.Error()))
	}

	slog.Info("Server stopped")
}
